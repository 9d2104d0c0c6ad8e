package keys

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// PrivateKey is a signing key. Formatting it with fmt verbs prints only its
// public key, String must be called explicitly to get the secret.
type PrivateKey struct {
	typ  KeyType
	ed   ed25519.PrivateKey
	secp *secp256k1.PrivateKey
	pub  *PublicKey
}

// NewPrivateKey creates a new random ed25519 private key.
func NewPrivateKey() (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return newED25519(priv), nil
}

// NewSecp256k1PrivateKey creates a new random secp256k1 private key.
func NewSecp256k1PrivateKey() (*PrivateKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return newSecp256k1(priv), nil
}

// NewPrivateKeyOfType creates a new random private key of the given type.
func NewPrivateKeyOfType(t KeyType) (*PrivateKey, error) {
	switch t {
	case ED25519:
		return NewPrivateKey()
	case SECP256K1:
		return NewSecp256k1PrivateKey()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKeyType, byte(t))
	}
}

func newED25519(priv ed25519.PrivateKey) *PrivateKey {
	return &PrivateKey{
		typ: ED25519,
		ed:  priv,
		pub: &PublicKey{typ: ED25519, data: bytes.Clone(priv[ED25519SeedSize:])},
	}
}

func newSecp256k1(priv *secp256k1.PrivateKey) *PrivateKey {
	return &PrivateKey{
		typ:  SECP256K1,
		secp: priv,
		pub:  &PublicKey{typ: SECP256K1, data: priv.PubKey().SerializeUncompressed()[1:]},
	}
}

// NewPrivateKeyFromBytes creates a private key of the given type from its
// raw payload. Ed25519 accepts either seed||public (64 bytes, the public half
// must match the seed) or a bare 32-byte seed; secp256k1 accepts a 32-byte
// scalar.
func NewPrivateKeyFromBytes(t KeyType, b []byte) (*PrivateKey, error) {
	switch t {
	case ED25519:
		switch len(b) {
		case ED25519SeedSize:
			return newED25519(ed25519.NewKeyFromSeed(b)), nil
		case ED25519SecretKeySize:
			priv := ed25519.NewKeyFromSeed(b[:ED25519SeedSize])
			if !bytes.Equal(priv[ED25519SeedSize:], b[ED25519SeedSize:]) {
				return nil, fmt.Errorf("%w: public key half doesn't match the seed", ErrInvalidKeyEncoding)
			}
			return newED25519(priv), nil
		default:
			return nil, fmt.Errorf("%w: ed25519 secret key must be %d or %d bytes, got %d",
				ErrInvalidKeyEncoding, ED25519SeedSize, ED25519SecretKeySize, len(b))
		}
	case SECP256K1:
		if len(b) != SECP256K1SecretKeySize {
			return nil, fmt.Errorf("%w: secp256k1 secret key must be %d bytes, got %d",
				ErrInvalidKeyEncoding, SECP256K1SecretKeySize, len(b))
		}
		var s secp256k1.ModNScalar
		if s.SetByteSlice(b) || s.IsZero() {
			return nil, fmt.Errorf("%w: secp256k1 scalar is out of range", ErrInvalidKeyEncoding)
		}
		return newSecp256k1(secp256k1.NewPrivateKey(&s)), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKeyType, byte(t))
	}
}

// NewPrivateKeyFromString parses a "<type>:<base58>" secret key string.
func NewPrivateKeyFromString(s string) (*PrivateKey, error) {
	t, b, err := parseTyped(s)
	if err != nil {
		return nil, err
	}
	return NewPrivateKeyFromBytes(t, b)
}

// Type returns the key type.
func (p *PrivateKey) Type() KeyType {
	return p.typ
}

// PublicKey returns the public key corresponding to the private key.
func (p *PrivateKey) PublicKey() *PublicKey {
	return p.pub
}

// Bytes returns the secret payload: seed||public for ed25519 and the scalar
// for secp256k1.
func (p *PrivateKey) Bytes() []byte {
	if p.typ == SECP256K1 {
		return p.secp.Serialize()
	}
	return bytes.Clone(p.ed)
}

// String returns the secret key in its text form.
func (p *PrivateKey) String() string {
	return formatKey(p.typ.String(), p.Bytes())
}

// Format implements the fmt.Formatter interface, it never prints the secret.
func (p *PrivateKey) Format(f fmt.State, _ rune) {
	_, _ = fmt.Fprintf(f, "PrivateKey(%s)", p.pub)
}

// Sign signs msg. Secp256k1 keys sign sha256(msg) unless msg is already a
// 32-byte digest and return a recoverable r||s||v signature.
func (p *PrivateKey) Sign(msg []byte) *Signature {
	switch p.typ {
	case SECP256K1:
		// SignCompact returns v||r||s with v = 27 + recovery id.
		cs := ecdsa.SignCompact(p.secp, digest(msg), false)
		sig := make([]byte, SECP256K1SignatureSize)
		copy(sig, cs[1:])
		sig[64] = cs[0] - 27
		return &Signature{typ: SECP256K1, data: sig}
	default:
		return &Signature{typ: ED25519, data: ed25519.Sign(p.ed, msg)}
	}
}
