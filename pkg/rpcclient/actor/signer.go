package actor

import (
	"sync"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
)

// Signer is an account with one of its access keys and the nonce of that key.
// The cached nonce is the last one known to be consumed on the chain, the
// next transaction uses it plus one. Signer is safe for concurrent use, but
// transactions of the same signer are expected to be submitted one at a time.
type Signer struct {
	id  account.ID
	key *keys.PrivateKey

	lock  sync.Mutex
	nonce uint64
}

// NewSigner creates a Signer with the given initial nonce (0 is fine, it's
// reconciled with the chain on the first submission).
func NewSigner(id account.ID, key *keys.PrivateKey, nonce uint64) *Signer {
	return &Signer{id: id, key: key, nonce: nonce}
}

// Account returns the signer account.
func (s *Signer) Account() account.ID {
	return s.id
}

// PublicKey returns the access key used for signing.
func (s *Signer) PublicKey() *keys.PublicKey {
	return s.key.PublicKey()
}

// Nonce returns the cached nonce.
func (s *Signer) Nonce() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.nonce
}

// NextNonce returns the nonce to be used by the next transaction.
func (s *Signer) NextNonce() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.nonce + 1
}

// Advance marks the next nonce as consumed.
func (s *Signer) Advance() {
	s.lock.Lock()
	s.nonce++
	s.lock.Unlock()
}

// Resync sets the cached nonce to the one reported by the chain.
func (s *Signer) Resync(remote uint64) {
	s.lock.Lock()
	s.nonce = remote
	s.lock.Unlock()
}

// reconcile raises the cached nonce to fetched if it's behind and returns the
// result.
func (s *Signer) reconcile(fetched uint64) uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	if fetched > s.nonce {
		s.nonce = fetched
	}
	return s.nonce
}

// SignTransaction signs the transaction, the cached nonce is not changed.
func (s *Signer) SignTransaction(tx *transaction.Transaction) (*transaction.SignedTransaction, error) {
	return tx.Sign(s.key)
}

// Sign signs arbitrary data.
func (s *Signer) Sign(msg []byte) *keys.Signature {
	return s.key.Sign(msg)
}
