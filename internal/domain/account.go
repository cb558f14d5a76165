package domain

import (
	"fmt"
	"math"
)

// Account is a trader's cash balance and share holdings. Cash and every
// holding stay non-negative: Buy and Sell are the only mutators and refuse
// operations that would overdraw either.
type Account struct {
	ID       int
	Cash     int64
	Holdings map[string]int64 // symbol → quantity
}

// NewAccount validates the opening balance and holdings and returns a new
// account that owns a copy of holdings.
func NewAccount(id int, cash int64, holdings map[string]int64) (*Account, error) {
	if cash < 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("account %d: cash must be >= 0, got %d", id, cash)}
	}
	h := make(map[string]int64, len(holdings))
	for symbol, qty := range holdings {
		if qty < 0 {
			return nil, &ValidationError{Message: fmt.Sprintf("account %d: holding %s must be >= 0, got %d", id, symbol, qty)}
		}
		h[symbol] = qty
	}
	return &Account{ID: id, Cash: cash, Holdings: h}, nil
}

// Quantity returns the number of shares of symbol held, or 0.
func (a *Account) Quantity(symbol string) int64 {
	return a.Holdings[symbol]
}

// Cost returns qty × price, or false when either is negative or the
// product does not fit in an int64.
func Cost(qty, price int64) (int64, bool) {
	if qty < 0 || price < 0 {
		return 0, false
	}
	if price != 0 && qty > math.MaxInt64/price {
		return 0, false
	}
	return qty * price, true
}

// canCredit reports whether adding n to balance stays within int64.
func canCredit(balance, n int64) bool {
	return n <= math.MaxInt64-balance
}

// CanBuy reports whether the account can pay qty × price.
func (a *Account) CanBuy(symbol string, qty, price int64) bool {
	cost, ok := Cost(qty, price)
	return ok && cost <= a.Cash
}

// Buy debits qty × price and credits qty shares of symbol.
func (a *Account) Buy(symbol string, qty, price int64) error {
	if !a.CanBuy(symbol, qty, price) {
		return fmt.Errorf("%w: account %d has %d, needs %d × %d", ErrInsufficientFunds, a.ID, a.Cash, qty, price)
	}
	if !canCredit(a.Holdings[symbol], qty) {
		return fmt.Errorf("%w: account %d cannot hold %d more %s", ErrBalanceOverflow, a.ID, qty, symbol)
	}
	cost, _ := Cost(qty, price)
	a.Cash -= cost
	a.Holdings[symbol] += qty
	return nil
}

// CanSell reports whether the account holds at least qty shares of symbol.
func (a *Account) CanSell(symbol string, qty int64) bool {
	return qty >= 0 && a.Holdings[symbol] >= qty
}

// Sell debits qty shares of symbol and credits qty × price.
func (a *Account) Sell(symbol string, qty, price int64) error {
	if !a.CanSell(symbol, qty) {
		return fmt.Errorf("%w: account %d holds %d %s, needs %d", ErrInsufficientInventory, a.ID, a.Holdings[symbol], symbol, qty)
	}
	proceeds, ok := Cost(qty, price)
	if !ok || !canCredit(a.Cash, proceeds) {
		return fmt.Errorf("%w: account %d cannot be credited %d × %d", ErrBalanceOverflow, a.ID, qty, price)
	}
	a.Holdings[symbol] -= qty
	a.Cash += proceeds
	return nil
}

// Transfer moves qty shares of symbol from seller to buyer against
// qty × price cash. Either both legs happen or neither does.
func Transfer(buyer, seller *Account, symbol string, qty, price int64) error {
	if !buyer.CanBuy(symbol, qty, price) {
		return fmt.Errorf("%w: account %d has %d, needs %d × %d", ErrInsufficientFunds, buyer.ID, buyer.Cash, qty, price)
	}
	if !seller.CanSell(symbol, qty) {
		return fmt.Errorf("%w: account %d holds %d %s, needs %d", ErrInsufficientInventory, seller.ID, seller.Holdings[symbol], symbol, qty)
	}
	if buyer == seller {
		// Self-trade: cash and shares come back to the same account.
		return nil
	}
	cost, _ := Cost(qty, price)
	if !canCredit(seller.Cash, cost) {
		return fmt.Errorf("%w: account %d cannot be credited %d", ErrBalanceOverflow, seller.ID, cost)
	}
	if !canCredit(buyer.Holdings[symbol], qty) {
		return fmt.Errorf("%w: account %d cannot hold %d more %s", ErrBalanceOverflow, buyer.ID, qty, symbol)
	}
	// Every check passed, so neither leg can fail.
	_ = buyer.Buy(symbol, qty, price)
	_ = seller.Sell(symbol, qty, price)
	return nil
}
