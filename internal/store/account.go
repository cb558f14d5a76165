package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/efreitasn/roundexchange/internal/domain"
)

// AccountStore is a thread-safe in-memory store for accounts,
// keyed by account id.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[int]*domain.Account
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[int]*domain.Account),
	}
}

// Create adds an account to the store. It returns
// domain.ErrAccountAlreadyExists if the id is taken.
func (s *AccountStore) Create(a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; exists {
		return fmt.Errorf("%w: %d", domain.ErrAccountAlreadyExists, a.ID)
	}
	s.accounts[a.ID] = a
	return nil
}

// Get retrieves an account by id. It returns
// domain.ErrAccountNotFound if the account does not exist.
func (s *AccountStore) Get(id int) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, id)
	}
	return a, nil
}

// Exists returns true if an account with the given id exists.
func (s *AccountStore) Exists(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[id]
	return ok
}

// All returns every account ordered by id.
func (s *AccountStore) All() []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Len returns the number of accounts.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
