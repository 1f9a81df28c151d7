package oauth2client

import (
	"context"
	"sync"
)

// TokenStore persists one token record per (serviceID, account) key.
// Implementations must be safe for concurrent use.
type TokenStore interface {
	// SaveToken replaces the record for the key.
	SaveToken(ctx context.Context, serviceID, account string, token *Token) error
	// GetToken returns the record for the key, or nil and no error when there is none.
	GetToken(ctx context.Context, serviceID, account string) (*Token, error)
	// DeleteToken removes the record for the key. Deleting a missing record is not an error.
	DeleteToken(ctx context.Context, serviceID, account string) error
}

// MemoryStore is an in-memory TokenStore. Records are copied on the way in
// and out, so callers never share a record with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[TokenKey]*Token
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[TokenKey]*Token)}
}

func (s *MemoryStore) SaveToken(_ context.Context, serviceID, account string, token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		s.tokens = make(map[TokenKey]*Token)
	}
	s.tokens[TokenKey{ServiceID: serviceID, Account: account}] = token.Clone()
	return nil
}

func (s *MemoryStore) GetToken(_ context.Context, serviceID, account string) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[TokenKey{ServiceID: serviceID, Account: account}].Clone(), nil
}

func (s *MemoryStore) DeleteToken(_ context.Context, serviceID, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, TokenKey{ServiceID: serviceID, Account: account})
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
