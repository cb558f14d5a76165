package service

import (
	"fmt"
	"sort"

	"github.com/efreitasn/roundexchange/internal/domain"
	"github.com/efreitasn/roundexchange/internal/store"
)

// ValidOrderStatuses is the set of statuses accepted as a list filter.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusPending:         true,
	domain.OrderStatusPartiallyFilled: true,
	domain.OrderStatusFilled:          true,
	domain.OrderStatusCancelled:       true,
	domain.OrderStatusExpired:         true,
}

// BalanceResponse is an account's cash and holdings.
type BalanceResponse struct {
	AccountID  int              `json:"account_id"`
	Cash       int64            `json:"cash"`
	Holdings   []HoldingBalance `json:"holdings"` // sorted by symbol, zero quantities omitted
	OpenOrders int              `json:"open_orders"`
}

// HoldingBalance represents a single holding in the balance response.
type HoldingBalance struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

// AccountService answers read-only questions about accounts and their
// orders.
type AccountService struct {
	accounts *store.AccountStore
	orders   *store.OrderStore
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts *store.AccountStore, orders *store.OrderStore) *AccountService {
	return &AccountService{accounts: accounts, orders: orders}
}

// GetBalance returns an account's cash, holdings and number of orders
// still resting on a book.
func (s *AccountService) GetBalance(accountID int) (*BalanceResponse, error) {
	acct, err := s.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}

	holdings := make([]HoldingBalance, 0, len(acct.Holdings))
	for symbol, qty := range acct.Holdings {
		if qty == 0 {
			continue
		}
		holdings = append(holdings, HoldingBalance{Symbol: symbol, Quantity: qty})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	open := 0
	for _, o := range s.orders.ListByAccount(accountID, nil) {
		if !o.Status.Terminal() {
			open++
		}
	}

	return &BalanceResponse{
		AccountID:  acct.ID,
		Cash:       acct.Cash,
		Holdings:   holdings,
		OpenOrders: open,
	}, nil
}

// Balances returns the balance of every account, ordered by id.
func (s *AccountService) Balances() ([]*BalanceResponse, error) {
	all := s.accounts.All()
	out := make([]*BalanceResponse, 0, len(all))
	for _, a := range all {
		b, err := s.GetBalance(a.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// StatusCounts tallies every submitted order by status.
func (s *AccountService) StatusCounts() map[domain.OrderStatus]int {
	return s.orders.CountByStatus()
}

// ListOrders returns one page of an account's orders, newest first, with
// optional status filtering, plus the total number of matching orders.
func (s *AccountService) ListOrders(accountID int, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int, error) {
	if !s.accounts.Exists(accountID) {
		return nil, 0, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, accountID)
	}

	if status != nil && !ValidOrderStatuses[*status] {
		return nil, 0, &domain.ValidationError{
			Message: fmt.Sprintf("Invalid status filter: '%s'. Must be one of: pending, partially_filled, filled, cancelled, expired", *status),
		}
	}

	if page < 1 {
		return nil, 0, &domain.ValidationError{
			Message: "page must be >= 1",
		}
	}
	if limit < 1 || limit > 100 {
		return nil, 0, &domain.ValidationError{
			Message: "limit must be between 1 and 100",
		}
	}

	all := s.orders.ListByAccount(accountID, status)
	total := len(all)
	start := (page - 1) * limit
	if start >= total {
		return []*domain.Order{}, total, nil
	}
	end := min(start+limit, total)
	return all[start:end], total, nil
}
