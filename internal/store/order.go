package store

import (
	"fmt"
	"sync"

	"github.com/efreitasn/roundexchange/internal/domain"
)

// OrderStore is a thread-safe in-memory store for every order ever
// submitted, with a primary index by order id and a secondary index by
// account id.
type OrderStore struct {
	mu            sync.RWMutex
	orders        map[int64]*domain.Order
	accountOrders map[int][]*domain.Order // account id → orders (append-only)
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:        make(map[int64]*domain.Order),
		accountOrders: make(map[int][]*domain.Order),
	}
}

// Create adds an order to the store and appends it to the
// account's secondary index.
func (s *OrderStore) Create(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.ID] = o
	s.accountOrders[o.AccountID] = append(s.accountOrders[o.AccountID], o)
}

// Get retrieves an order by id. It returns
// domain.ErrOrderNotFound if the order does not exist.
func (s *OrderStore) Get(id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrOrderNotFound, id)
	}
	return o, nil
}

// ListByAccount returns an account's orders newest first. If status is
// non-nil, only orders with that status are included.
func (s *OrderStore) ListByAccount(accountID int, status *domain.OrderStatus) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.accountOrders[accountID]
	filtered := make([]*domain.Order, 0)
	for i := len(all) - 1; i >= 0; i-- {
		if status != nil && all[i].Status != *status {
			continue
		}
		filtered = append(filtered, all[i])
	}
	return filtered
}

// CountByStatus tallies every stored order by status.
func (s *OrderStore) CountByStatus() map[domain.OrderStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.OrderStatus]int)
	for _, o := range s.orders {
		counts[o.Status]++
	}
	return counts
}
