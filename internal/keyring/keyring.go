// Package keyring retains private keys for the single-use token accounts
// the client generates as buy and close destinations. The program hands the
// escrowed token to a freshly created account per purchase; keeping its key
// here is what makes the token retrievable afterward.
package keyring

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Store holds generated destination-account keypairs, indexed by their
// public key. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	keys map[solana.PublicKey]solana.PrivateKey
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		keys: make(map[solana.PublicKey]solana.PrivateKey),
	}
}

// Generate creates a new keypair and retains it.
func (s *Store) Generate() (solana.PrivateKey, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.keys[key.PublicKey()] = key
	s.mu.Unlock()
	return key, nil
}

// Get returns the private key for an account, if it was generated here.
func (s *Store) Get(account solana.PublicKey) (solana.PrivateKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[account]
	return key, ok
}

// Remove drops a key, e.g. after the account's funds were moved out.
func (s *Store) Remove(account solana.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, account)
}

// Export returns a copy of every retained keypair for external backup.
func (s *Store) Export() map[solana.PublicKey]solana.PrivateKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[solana.PublicKey]solana.PrivateKey, len(s.keys))
	for pub, key := range s.keys {
		out[pub] = key
	}
	return out
}

// Len returns the number of retained keypairs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
