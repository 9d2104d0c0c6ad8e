package keys

import (
	"bytes"
	"crypto/rand"
	"crypto/sha512"
	"encoding/json"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"
)

// ExchangePrivateKey is an x25519 secret used for Diffie-Hellman key
// exchange.
type ExchangePrivateKey [X25519KeySize]byte

// ExchangePublicKey is an x25519 public key.
type ExchangePublicKey [X25519KeySize]byte

// NewExchangePrivateKey creates a new random x25519 secret.
func NewExchangePrivateKey() (*ExchangePrivateKey, error) {
	var k ExchangePrivateKey
	if _, err := rand.Read(k[:]); err != nil {
		return nil, err
	}
	clamp(k[:])
	return &k, nil
}

func clamp(k []byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}

// NewExchangePrivateKeyFromString parses an "x25519:<base58>" secret.
func NewExchangePrivateKeyFromString(s string) (*ExchangePrivateKey, error) {
	b, err := parseExchange(s)
	if err != nil {
		return nil, err
	}
	k := ExchangePrivateKey(b)
	return &k, nil
}

// NewExchangePublicKeyFromString parses an "x25519:<base58>" public key.
func NewExchangePublicKeyFromString(s string) (*ExchangePublicKey, error) {
	b, err := parseExchange(s)
	if err != nil {
		return nil, err
	}
	k := ExchangePublicKey(b)
	return &k, nil
}

func parseExchange(s string) ([X25519KeySize]byte, error) {
	var res [X25519KeySize]byte
	tag, b, err := splitKey(s)
	if err != nil {
		return res, err
	}
	if tag != x25519Tag {
		return res, fmt.Errorf("%w: expected %s key, got %q", ErrInvalidKeyEncoding, x25519Tag, tag)
	}
	if len(b) != X25519KeySize {
		return res, fmt.Errorf("%w: x25519 key must be %d bytes, got %d", ErrInvalidKeyEncoding, X25519KeySize, len(b))
	}
	copy(res[:], b)
	return res, nil
}

// ExchangeKey derives an x25519 secret from an ed25519 key, the same scalar
// that ed25519 uses for signing.
func (p *PrivateKey) ExchangeKey() (*ExchangePrivateKey, error) {
	if p.typ != ED25519 {
		return nil, fmt.Errorf("%w: %s", ErrWrongKeyType, p.typ)
	}
	h := sha512.Sum512(p.ed.Seed())
	var k ExchangePrivateKey
	copy(k[:], h[:X25519KeySize])
	clamp(k[:])
	return &k, nil
}

// ExchangeKey converts an ed25519 public key into the x25519 one. Encodings
// that are not curve points are rejected with ErrInvalidKeyEncoding.
func (p *PublicKey) ExchangeKey() (*ExchangePublicKey, error) {
	if p.typ != ED25519 {
		return nil, fmt.Errorf("%w: %s", ErrWrongKeyType, p.typ)
	}
	point, err := new(edwards25519.Point).SetBytes(p.data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	var k ExchangePublicKey
	copy(k[:], point.BytesMontgomery())
	return &k, nil
}

// PublicKey returns the x25519 public key for the secret.
func (k *ExchangePrivateKey) PublicKey() *ExchangePublicKey {
	b, err := curve25519.X25519(k[:], curve25519.Basepoint)
	if err != nil {
		// Only low-order points fail and the base point is not one of them.
		panic(err)
	}
	var pub ExchangePublicKey
	copy(pub[:], b)
	return &pub
}

// SharedSecret computes the Diffie-Hellman secret with the other side's
// public key.
func (k *ExchangePrivateKey) SharedSecret(pub *ExchangePublicKey) ([]byte, error) {
	return curve25519.X25519(k[:], pub[:])
}

// String returns the secret in its text form.
func (k *ExchangePrivateKey) String() string {
	return formatKey(x25519Tag, k[:])
}

// String implements the fmt.Stringer interface.
func (k *ExchangePublicKey) String() string {
	return formatKey(x25519Tag, k[:])
}

// Equal returns true if both keys have the same bytes.
func (k *ExchangePublicKey) Equal(other *ExchangePublicKey) bool {
	return bytes.Equal(k[:], other[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (k *ExchangePublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (k *ExchangePublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	pk, err := NewExchangePublicKeyFromString(s)
	if err != nil {
		return err
	}
	*k = *pk
	return nil
}
