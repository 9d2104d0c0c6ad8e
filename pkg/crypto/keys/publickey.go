package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/io"
)

// PublicKey is a public key of some KeyType. For secp256k1 the data is an
// uncompressed point without the 0x04 prefix.
type PublicKey struct {
	typ  KeyType
	data []byte
}

// NewPublicKeyFromBytes returns a public key of the given type.
func NewPublicKeyFromBytes(t KeyType, b []byte) (*PublicKey, error) {
	size, err := t.publicKeySize()
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: %s public key must be %d bytes, got %d", ErrInvalidKeyEncoding, t, size, len(b))
	}
	if t == SECP256K1 {
		if _, err := secp256k1.ParsePubKey(append([]byte{0x04}, b...)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
		}
	}
	return &PublicKey{typ: t, data: bytes.Clone(b)}, nil
}

// NewPublicKeyFromString parses a "<type>:<base58>" public key string.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	t, b, err := parseTyped(s)
	if err != nil {
		return nil, err
	}
	return NewPublicKeyFromBytes(t, b)
}

// Type returns the key type.
func (p *PublicKey) Type() KeyType {
	return p.typ
}

// Bytes returns a copy of the raw key bytes.
func (p *PublicKey) Bytes() []byte {
	return bytes.Clone(p.data)
}

// String implements the fmt.Stringer interface.
func (p *PublicKey) String() string {
	return formatKey(p.typ.String(), p.data)
}

// Equal returns true if both keys are of the same type and have the same bytes.
func (p *PublicKey) Equal(other *PublicKey) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.typ == other.typ && bytes.Equal(p.data, other.data)
}

// Verify checks that sig is a valid signature of msg made by the key.
// Secp256k1 signatures are checked against sha256(msg) unless msg is already
// a 32-byte digest.
func (p *PublicKey) Verify(msg []byte, sig *Signature) bool {
	if sig == nil || sig.typ != p.typ {
		return false
	}
	switch p.typ {
	case ED25519:
		return ed25519.Verify(p.data, msg, sig.data)
	case SECP256K1:
		pub, err := secp256k1.ParsePubKey(append([]byte{0x04}, p.data...))
		if err != nil {
			return false
		}
		var r, s secp256k1.ModNScalar
		if r.SetByteSlice(sig.data[:32]) || s.SetByteSlice(sig.data[32:64]) {
			return false
		}
		return ecdsa.NewSignature(&r, &s).Verify(digest(msg), pub)
	default:
		return false
	}
}

// digest returns msg if it already is a 32-byte hash and sha256(msg) otherwise.
func digest(msg []byte) []byte {
	if len(msg) == hash.CryptoHashSize {
		return msg
	}
	h := hash.Sha256(msg)
	return h[:]
}

// MarshalJSON implements the json.Marshaler interface.
func (p *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	pk, err := NewPublicKeyFromString(s)
	if err != nil {
		return err
	}
	*p = *pk
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (p *PublicKey) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(p.typ))
	w.WriteBytes(p.data)
}

// DecodeBinary implements the io.Serializable interface.
func (p *PublicKey) DecodeBinary(r *io.BinReader) {
	t := KeyType(r.ReadB())
	if r.Err != nil {
		return
	}
	size, err := t.publicKeySize()
	if err != nil {
		r.Err = err
		return
	}
	b := make([]byte, size)
	r.ReadBytes(b)
	if r.Err != nil {
		return
	}
	p.typ, p.data = t, b
}
