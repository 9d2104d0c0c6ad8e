/*
Package account contains account identifiers and access keys.
*/
package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/near-go/pkg/io"
)

// Account ID length limits.
const (
	MinIDLength = 2
	MaxIDLength = 64
)

// ErrInvalidAccountID is returned for malformed account IDs.
var ErrInvalidAccountID = errors.New("invalid account ID")

// ID is a validated account identifier like "alice.testnet".
type ID string

// NewID validates s and returns it as an account ID.
func NewID(s string) (ID, error) {
	if err := Validate(s); err != nil {
		return "", err
	}
	return ID(s), nil
}

// MustID is like NewID, but panics on invalid input.
func MustID(s string) ID {
	id, err := NewID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func isSeparator(c byte) bool {
	return c == '-' || c == '_' || c == '.'
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// Validate checks s against account ID rules: 2 to 64 characters of
// lowercase letters, digits and separators ('-', '_', '.'), starting and
// ending with a letter or digit, without consecutive separators.
func Validate(s string) error {
	if len(s) < MinIDLength || len(s) > MaxIDLength {
		return fmt.Errorf("%w: %q has length %d, must be %d..%d", ErrInvalidAccountID, s, len(s), MinIDLength, MaxIDLength)
	}
	prevSep := true // disallows a leading separator
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isAlnum(c):
			prevSep = false
		case isSeparator(c):
			if prevSep {
				return fmt.Errorf("%w: %q has a misplaced separator at %d", ErrInvalidAccountID, s, i)
			}
			prevSep = true
		default:
			return fmt.Errorf("%w: %q has invalid character %q at %d", ErrInvalidAccountID, s, c, i)
		}
	}
	if prevSep {
		return fmt.Errorf("%w: %q ends with a separator", ErrInvalidAccountID, s)
	}
	return nil
}

// String implements the fmt.Stringer interface.
func (id ID) String() string {
	return string(id)
}

// IsImplicit returns true for 64-character hex IDs derived from public keys.
func (id ID) IsImplicit() bool {
	if len(id) != 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !((c >= 'a' && c <= 'f') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

// IsTopLevel returns true for IDs without dots.
func (id ID) IsTopLevel() bool {
	return !strings.Contains(string(id), ".")
}

// IsSubAccountOf returns true if id is a direct sub-account of parent,
// like "app.alice.testnet" for "alice.testnet".
func (id ID) IsSubAccountOf(parent ID) bool {
	prefix, found := strings.CutSuffix(string(id), "."+string(parent))
	return found && prefix != "" && !strings.Contains(prefix, ".")
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := NewID(s)
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (id *ID) EncodeBinary(w *io.BinWriter) {
	w.WriteString(string(*id))
}

// DecodeBinary implements the io.Serializable interface.
func (id *ID) DecodeBinary(r *io.BinReader) {
	s := r.ReadString(MaxIDLength)
	if r.Err != nil {
		return
	}
	if err := Validate(s); err != nil {
		r.Err = err
		return
	}
	*id = ID(s)
}
