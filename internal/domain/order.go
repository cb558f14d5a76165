package domain

import (
	"fmt"
	"sync/atomic"
)

// OrderSide indicates whether an order buys or sells.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusExpired         OrderStatus = "expired"
)

// Terminal reports whether the status can no longer change.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusExpired:
		return true
	}
	return false
}

// ExpiryKind enumerates the closed set of expiry policies.
type ExpiryKind uint8

const (
	ExpiryInstant ExpiryKind = iota
	ExpiryValidUntilRound
	ExpiryIndefinite
	ExpiryAllOrNothing
)

func (k ExpiryKind) String() string {
	switch k {
	case ExpiryInstant:
		return "instant"
	case ExpiryValidUntilRound:
		return "valid_until_round"
	case ExpiryIndefinite:
		return "indefinite"
	case ExpiryAllOrNothing:
		return "all_or_nothing"
	}
	return fmt.Sprintf("expiry(%d)", uint8(k))
}

// Expiry is an order's expiry policy. Round is only meaningful for
// ExpiryValidUntilRound.
type Expiry struct {
	Kind  ExpiryKind
	Round int
}

// Instant orders live only for the round they were submitted in.
func Instant() Expiry { return Expiry{Kind: ExpiryInstant} }

// ValidUntil orders expire once the current round is >= round.
func ValidUntil(round int) Expiry { return Expiry{Kind: ExpiryValidUntilRound, Round: round} }

// Indefinite orders never expire.
func Indefinite() Expiry { return Expiry{Kind: ExpiryIndefinite} }

// AllOrNothing orders live for one round and fill completely or not at all.
func AllOrNothing() Expiry { return Expiry{Kind: ExpiryAllOrNothing} }

// Expired reports whether an order submitted in round submitted has
// expired as of round current. Once true it stays true for every later round.
func (e Expiry) Expired(submitted, current int) bool {
	switch e.Kind {
	case ExpiryInstant, ExpiryAllOrNothing:
		return current >= submitted
	case ExpiryValidUntilRound:
		return current >= e.Round
	default:
		return false
	}
}

// Order is a request to buy or sell Quantity shares of Symbol at Price or
// better. AccountID and Symbol are handles into the account store and the
// instrument registry.
type Order struct {
	ID             int64
	AccountID      int
	Symbol         string
	Side           OrderSide
	Price          int64 // BUY: maximum acceptable, SELL: minimum acceptable
	Quantity       int64
	Remaining      int64
	Filled         int64
	Expiry         Expiry
	SubmittedRound int
	Status         OrderStatus
}

// IsBuy reports whether the order is on the buy side.
func (o *Order) IsBuy() bool { return o.Side == OrderSideBuy }

// AllOrNothing reports whether the order uses all-or-nothing semantics.
func (o *Order) AllOrNothing() bool { return o.Expiry.Kind == ExpiryAllOrNothing }

// Expired reports whether the order's expiry policy has lapsed by round.
func (o *Order) Expired(round int) bool {
	return o.Expiry.Expired(o.SubmittedRound, round)
}

// Fill reduces the remaining quantity by qty and updates the status.
// Reducing by a non-positive amount or by more than remains is a bug in
// the caller and panics with ErrInvalidQuantityReduction.
func (o *Order) Fill(qty int64) {
	if qty <= 0 || qty > o.Remaining {
		panic(fmt.Errorf("%w: order %d has %d remaining, asked to fill %d",
			ErrInvalidQuantityReduction, o.ID, o.Remaining, qty))
	}
	o.Remaining -= qty
	o.Filled += qty
	if o.Remaining == 0 {
		o.Status = OrderStatusFilled
	} else {
		o.Status = OrderStatusPartiallyFilled
	}
}

// OrderRequest carries the caller-supplied fields of a new order.
type OrderRequest struct {
	AccountID int
	Symbol    string
	Side      OrderSide
	Price     int64
	Quantity  int64
	Expiry    Expiry
}

// OrderFactory validates order requests and assigns monotonically
// increasing ids. Safe for concurrent use.
type OrderFactory struct {
	next atomic.Int64
}

// NewOrderFactory creates a factory whose first id is 1.
func NewOrderFactory() *OrderFactory {
	return &OrderFactory{}
}

// New validates req and returns a pending order with a fresh id.
func (f *OrderFactory) New(req OrderRequest) (*Order, error) {
	if req.Symbol == "" {
		return nil, &ValidationError{Message: "symbol is required"}
	}
	if req.Side != OrderSideBuy && req.Side != OrderSideSell {
		return nil, &ValidationError{Message: fmt.Sprintf("side must be 'buy' or 'sell', got %q", req.Side)}
	}
	if req.Quantity <= 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("quantity must be > 0, got %d", req.Quantity)}
	}
	if req.Price <= 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("price must be > 0, got %d", req.Price)}
	}
	if _, ok := Cost(req.Quantity, req.Price); !ok {
		return nil, &ValidationError{Message: fmt.Sprintf("quantity %d × price %d overflows", req.Quantity, req.Price)}
	}
	switch req.Expiry.Kind {
	case ExpiryInstant, ExpiryIndefinite, ExpiryAllOrNothing:
	case ExpiryValidUntilRound:
		if req.Expiry.Round < 0 {
			return nil, &ValidationError{Message: fmt.Sprintf("valid-until round must be >= 0, got %d", req.Expiry.Round)}
		}
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("unknown expiry kind %d", req.Expiry.Kind)}
	}

	return &Order{
		ID:        f.next.Add(1),
		AccountID: req.AccountID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Remaining: req.Quantity,
		Expiry:    req.Expiry,
		Status:    OrderStatusPending,
	}, nil
}
