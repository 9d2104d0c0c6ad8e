/*
Package keys implements signing and exchange keys. Keys, public keys and
signatures have a text form of "<type>:<base58 payload>", where type is
"ed25519", "secp256k1" or "x25519". A text form without the type prefix is
treated as ed25519.
*/
package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// KeyType is the signature scheme of a key. Its numeric value is the one used
// in the binary encoding of keys and signatures.
type KeyType byte

// Supported key types.
const (
	ED25519   KeyType = 0
	SECP256K1 KeyType = 1
)

// Sizes of key and signature payloads.
const (
	ED25519PublicKeySize   = 32
	ED25519SecretKeySize   = 64
	ED25519SeedSize        = 32
	ED25519SignatureSize   = 64
	SECP256K1PublicKeySize = 64
	SECP256K1SecretKeySize = 32
	SECP256K1SignatureSize = 65
	X25519KeySize          = 32
)

const x25519Tag = "x25519"

var (
	// ErrInvalidKeyEncoding is returned when a key or signature string
	// can't be parsed.
	ErrInvalidKeyEncoding = errors.New("invalid key encoding")
	// ErrUnknownKeyType is returned for unsupported key types.
	ErrUnknownKeyType = errors.New("unknown key type")
	// ErrWrongKeyType is returned when an operation is not supported by
	// the key type.
	ErrWrongKeyType = errors.New("wrong key type")
)

// String implements the fmt.Stringer interface.
func (t KeyType) String() string {
	switch t {
	case ED25519:
		return "ed25519"
	case SECP256K1:
		return "secp256k1"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// ParseKeyType parses a key type tag.
func ParseKeyType(s string) (KeyType, error) {
	switch strings.ToLower(s) {
	case "ed25519":
		return ED25519, nil
	case "secp256k1":
		return SECP256K1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKeyType, s)
	}
}

func (t KeyType) publicKeySize() (int, error) {
	switch t {
	case ED25519:
		return ED25519PublicKeySize, nil
	case SECP256K1:
		return SECP256K1PublicKeySize, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownKeyType, byte(t))
	}
}

func (t KeyType) signatureSize() (int, error) {
	switch t {
	case ED25519:
		return ED25519SignatureSize, nil
	case SECP256K1:
		return SECP256K1SignatureSize, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownKeyType, byte(t))
	}
}

// splitKey separates the type tag from the payload and decodes the latter.
func splitKey(s string) (string, []byte, error) {
	tag, data, found := strings.Cut(s, ":")
	if !found {
		tag, data = ED25519.String(), s
	}
	b, err := base58.Decode(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: bad base58: %v", ErrInvalidKeyEncoding, err)
	}
	return strings.ToLower(tag), b, nil
}

func parseTyped(s string) (KeyType, []byte, error) {
	tag, b, err := splitKey(s)
	if err != nil {
		return 0, nil, err
	}
	t, err := ParseKeyType(tag)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	return t, b, nil
}

func formatKey(tag string, b []byte) string {
	return tag + ":" + base58.Encode(b)
}
