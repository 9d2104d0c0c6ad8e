/*
Package hash contains the 32-byte digest type used for transaction and block
hashes.
*/
package hash

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/near-go/pkg/io"
)

// CryptoHashSize is the size of CryptoHash in bytes.
const CryptoHashSize = 32

// CryptoHash is a sha256 digest. Its text form is base58.
type CryptoHash [CryptoHashSize]byte

// ErrInvalidLength is returned when decoding a hash of the wrong size.
var ErrInvalidLength = errors.New("invalid hash length")

// Sha256 hashes the incoming byte slice using the sha256 algorithm.
func Sha256(data []byte) CryptoHash {
	return sha256.Sum256(data)
}

// NewFromBytes creates a hash from the given byte slice.
func NewFromBytes(b []byte) (CryptoHash, error) {
	var h CryptoHash
	if len(b) != CryptoHashSize {
		return h, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLength, CryptoHashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// NewFromString decodes a base58 hash string.
func NewFromString(s string) (CryptoHash, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return CryptoHash{}, fmt.Errorf("bad base58 hash: %w", err)
	}
	return NewFromBytes(b)
}

// String implements the fmt.Stringer interface.
func (h CryptoHash) String() string {
	return base58.Encode(h[:])
}

// BytesBE returns a copy of the hash bytes.
func (h CryptoHash) BytesBE() []byte {
	b := make([]byte, CryptoHashSize)
	copy(b, h[:])
	return b
}

// IsZero checks whether all hash bytes are zero.
func (h CryptoHash) IsZero() bool {
	return h == CryptoHash{}
}

// Equals returns true if both hashes are equal.
func (h CryptoHash) Equals(other CryptoHash) bool {
	return h == other
}

// MarshalJSON implements the json.Marshaler interface.
func (h CryptoHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (h *CryptoHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := NewFromString(s)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (h *CryptoHash) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(h[:])
}

// DecodeBinary implements the io.Serializable interface.
func (h *CryptoHash) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(h[:])
}
