package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nspcc-dev/near-go/pkg/core/account"
)

// ErrNotFound is returned for accounts with no credentials in the store.
var ErrNotFound = errors.New("credentials not found")

const fileExt = ".json"

// Store is a directory of credentials of a single network.
type Store struct {
	dir     string
	network string
}

// NewStore creates a Store for the network in the base directory. A leading
// "~" in dir is expanded to the user's home directory.
func NewStore(dir, network string) (*Store, error) {
	if network == "" || strings.ContainsAny(network, `/\`) {
		return nil, fmt.Errorf("invalid network name %q", network)
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, dir[1:])
	}
	return &Store{dir: dir, network: network}, nil
}

// Path returns the credentials file path for the account.
func (s *Store) Path(id account.ID) string {
	return filepath.Join(s.dir, s.network, id.String()+fileExt)
}

// Load reads credentials of the account.
func (s *Store) Load(id account.ID) (*Credentials, error) {
	c, err := ReadFile(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s on %s", ErrNotFound, id, s.network)
	}
	if err != nil {
		return nil, err
	}
	if c.AccountID != id {
		return nil, fmt.Errorf("credentials file for %s contains %s", id, c.AccountID)
	}
	return c, nil
}

// Save stores the credentials overwriting the existing ones.
func (s *Store) Save(c *Credentials) error {
	return c.WriteFile(s.Path(c.AccountID))
}

// Remove deletes credentials of the account.
func (s *Store) Remove(id account.ID) error {
	err := os.Remove(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s on %s", ErrNotFound, id, s.network)
	}
	return err
}

// List returns sorted IDs of all accounts in the store.
func (s *Store) List() ([]account.ID, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, s.network))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res []account.ID
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), fileExt)
		if e.IsDir() || !ok {
			continue
		}
		id, err := account.NewID(name)
		if err != nil {
			continue
		}
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res, nil
}
