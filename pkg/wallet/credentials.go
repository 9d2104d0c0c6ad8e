/*
Package wallet implements near-cli compatible credential storage.

Each account key is kept in a separate JSON file at
<dir>/<network>/<account>.json containing the account ID and the key pair in
the <type>:<base58> form.
*/
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	nio "github.com/nspcc-dev/near-go/pkg/io"
)

// ErrKeyMismatch is returned when the public key stored in the file doesn't
// match the private one.
var ErrKeyMismatch = errors.New("public key doesn't match private key")

// Credentials is an account with its access key.
type Credentials struct {
	AccountID  account.ID
	PrivateKey *keys.PrivateKey
}

type credentialsAux struct {
	AccountID  account.ID `json:"account_id"`
	PublicKey  string     `json:"public_key"`
	PrivateKey string     `json:"private_key"`
	// SecretKey is an alias of private_key used by some tools.
	SecretKey string `json:"secret_key,omitempty"`
}

// NewCredentials creates credentials for the account with a newly generated
// key of the given type.
func NewCredentials(id account.ID, t keys.KeyType) (*Credentials, error) {
	k, err := keys.NewPrivateKeyOfType(t)
	if err != nil {
		return nil, err
	}
	return &Credentials{AccountID: id, PrivateKey: k}, nil
}

// PublicKey returns the public key of the credentials.
func (c *Credentials) PublicKey() *keys.PublicKey {
	return c.PrivateKey.PublicKey()
}

// MarshalJSON implements the json.Marshaler interface.
func (c *Credentials) MarshalJSON() ([]byte, error) {
	return json.Marshal(credentialsAux{
		AccountID:  c.AccountID,
		PublicKey:  c.PrivateKey.PublicKey().String(),
		PrivateKey: c.PrivateKey.String(),
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *Credentials) UnmarshalJSON(data []byte) error {
	var aux credentialsAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	secret := aux.PrivateKey
	if secret == "" {
		secret = aux.SecretKey
	}
	k, err := keys.NewPrivateKeyFromString(secret)
	if err != nil {
		return err
	}
	if aux.PublicKey != "" {
		pub, err := keys.NewPublicKeyFromString(aux.PublicKey)
		if err != nil {
			return err
		}
		if !pub.Equal(k.PublicKey()) {
			return ErrKeyMismatch
		}
	}
	c.AccountID = aux.AccountID
	c.PrivateKey = k
	return nil
}

// ReadFile reads credentials from the file.
func ReadFile(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := new(Credentials)
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("bad credentials file %s: %w", path, err)
	}
	return c, nil
}

// WriteFile writes credentials to the file creating parent directories if
// needed. The file is readable only by its owner.
func (c *Credentials) WriteFile(path string) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := nio.MakeDirForFile(path, "credentials"); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
