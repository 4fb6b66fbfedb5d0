// Package memdb is an in-memory account store with the same contract as the
// postgres store. It exists for tests and single-node development; it is an
// explicit, injected dependency with normal init/teardown, never implicit
// process-global state.
package memdb

import (
	"context"
	"sync"

	"github.com/zkotp-io/zkotp/internal/authz/entity"
	"github.com/zkotp-io/zkotp/internal/pkg/goerror"
)

// Store holds accounts behind a read-write mutex. Create is an atomic
// check-then-insert under the write lock, matching the uniqueness guarantee
// of the database-backed store.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]entity.Account
}

// New returns an empty store.
func New() *Store {
	return &Store{accounts: make(map[string]entity.Account)}
}

// CreateAccount inserts the account, goerror.ErrConflict on duplicate id.
func (s *Store) CreateAccount(_ context.Context, acc entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acc.ID]; ok {
		return goerror.ErrConflict
	}

	blob := make([]byte, len(acc.SecretBlob))
	copy(blob, acc.SecretBlob)
	acc.SecretBlob = blob

	s.accounts[acc.ID] = acc
	return nil
}

// GetAccount fetches one account, goerror.ErrNotFound when absent.
func (s *Store) GetAccount(_ context.Context, id string) (*entity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	blob := make([]byte, len(acc.SecretBlob))
	copy(blob, acc.SecretBlob)
	acc.SecretBlob = blob

	return &acc, nil
}

// Close drops all accounts.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]entity.Account)
	return nil
}
