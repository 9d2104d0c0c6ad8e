/*
Package transaction contains transactions, their actions and the binary
encoding they're signed in.
*/
package transaction

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/io"
)

// Transaction is an unsigned transaction. Its binary encoding is what gets
// hashed and signed.
type Transaction struct {
	SignerID   account.ID
	PublicKey  *keys.PublicKey
	Nonce      uint64
	ReceiverID account.ID
	BlockHash  hash.CryptoHash
	Actions    Actions
}

// EncodeBinary implements the io.Serializable interface.
func (t *Transaction) EncodeBinary(w *io.BinWriter) {
	t.SignerID.EncodeBinary(w)
	encodeKey(w, t.PublicKey)
	w.WriteU64LE(t.Nonce)
	t.ReceiverID.EncodeBinary(w)
	t.BlockHash.EncodeBinary(w)
	t.Actions.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (t *Transaction) DecodeBinary(r *io.BinReader) {
	t.SignerID.DecodeBinary(r)
	t.PublicKey = decodeKey(r)
	t.Nonce = r.ReadU64LE()
	t.ReceiverID.DecodeBinary(r)
	t.BlockHash.DecodeBinary(r)
	t.Actions.DecodeBinary(r)
}

// Bytes returns the binary encoding of the transaction.
func (t *Transaction) Bytes() ([]byte, error) {
	return io.ToBytes(t)
}

// Hash returns sha256 of the binary encoding, it's both the transaction ID
// and the message being signed.
func (t *Transaction) Hash() (hash.CryptoHash, error) {
	b, err := t.Bytes()
	if err != nil {
		return hash.CryptoHash{}, fmt.Errorf("failed to encode transaction: %w", err)
	}
	return hash.Sha256(b), nil
}

// Sign signs the transaction hash with the key. It doesn't check that the
// key matches the PublicKey field.
func (t *Transaction) Sign(k *keys.PrivateKey) (*SignedTransaction, error) {
	h, err := t.Hash()
	if err != nil {
		return nil, err
	}
	return &SignedTransaction{
		Transaction: *t,
		Signature:   k.Sign(h[:]),
	}, nil
}

// SignedTransaction is a transaction with the signature of its hash.
type SignedTransaction struct {
	Transaction Transaction
	Signature   *keys.Signature
}

var errNoSignature = errors.New("missing signature")

// EncodeBinary implements the io.Serializable interface.
func (s *SignedTransaction) EncodeBinary(w *io.BinWriter) {
	s.Transaction.EncodeBinary(w)
	if s.Signature == nil {
		if w.Err == nil {
			w.Err = errNoSignature
		}
		return
	}
	s.Signature.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (s *SignedTransaction) DecodeBinary(r *io.BinReader) {
	s.Transaction.DecodeBinary(r)
	sig := new(keys.Signature)
	sig.DecodeBinary(r)
	if r.Err == nil {
		s.Signature = sig
	}
}

// NewSignedTransactionFromBytes decodes a signed transaction.
func NewSignedTransactionFromBytes(b []byte) (*SignedTransaction, error) {
	s := new(SignedTransaction)
	if err := io.FromBytes(b, s); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSignedTransactionFromBase64 decodes a base64-encoded signed transaction.
func NewSignedTransactionFromBase64(s string) (*SignedTransaction, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return NewSignedTransactionFromBytes(b)
}

// Bytes returns the binary encoding of the signed transaction.
func (s *SignedTransaction) Bytes() ([]byte, error) {
	return io.ToBytes(s)
}

// Base64 returns the base64 form of the binary encoding, the one accepted by
// broadcast RPC methods.
func (s *SignedTransaction) Base64() (string, error) {
	b, err := s.Bytes()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Hash returns the hash of the inner transaction.
func (s *SignedTransaction) Hash() (hash.CryptoHash, error) {
	return s.Transaction.Hash()
}

// Verify checks the signature against the transaction public key.
func (s *SignedTransaction) Verify() bool {
	if s.Transaction.PublicKey == nil || s.Signature == nil {
		return false
	}
	h, err := s.Hash()
	if err != nil {
		return false
	}
	return s.Transaction.PublicKey.Verify(h[:], s.Signature)
}
