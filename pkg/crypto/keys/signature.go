package keys

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/io"
)

// Signature is a signature made by a key of some KeyType. Secp256k1
// signatures are r||s||v with v being the recovery id.
type Signature struct {
	typ  KeyType
	data []byte
}

// NewSignatureFromBytes returns a signature of the given type.
func NewSignatureFromBytes(t KeyType, b []byte) (*Signature, error) {
	size, err := t.signatureSize()
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: %s signature must be %d bytes, got %d", ErrInvalidKeyEncoding, t, size, len(b))
	}
	return &Signature{typ: t, data: bytes.Clone(b)}, nil
}

// NewSignatureFromString parses a "<type>:<base58>" signature string.
func NewSignatureFromString(s string) (*Signature, error) {
	t, b, err := parseTyped(s)
	if err != nil {
		return nil, err
	}
	return NewSignatureFromBytes(t, b)
}

// Type returns the signature's key type.
func (s *Signature) Type() KeyType {
	return s.typ
}

// Bytes returns a copy of the raw signature bytes.
func (s *Signature) Bytes() []byte {
	return bytes.Clone(s.data)
}

// String implements the fmt.Stringer interface.
func (s *Signature) String() string {
	return formatKey(s.typ.String(), s.data)
}

// MarshalJSON implements the json.Marshaler interface.
func (s *Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	sig, err := NewSignatureFromString(str)
	if err != nil {
		return err
	}
	*s = *sig
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (s *Signature) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(s.typ))
	w.WriteBytes(s.data)
}

// DecodeBinary implements the io.Serializable interface.
func (s *Signature) DecodeBinary(r *io.BinReader) {
	t := KeyType(r.ReadB())
	if r.Err != nil {
		return
	}
	size, err := t.signatureSize()
	if err != nil {
		r.Err = err
		return
	}
	b := make([]byte, size)
	r.ReadBytes(b)
	if r.Err != nil {
		return
	}
	s.typ, s.data = t, b
}
