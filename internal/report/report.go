// Package report renders the end-of-run state of a simulation as an
// aligned text table or as JSON.
package report

import (
	"fmt"

	"github.com/efreitasn/roundexchange/internal/domain"
	"github.com/efreitasn/roundexchange/internal/metrics"
	"github.com/efreitasn/roundexchange/internal/service"
	"github.com/efreitasn/roundexchange/internal/simulation"
)

// Report is everything printed after a run.
type Report struct {
	Seed        int64                      `json:"seed"`
	Summary     simulation.Summary         `json:"summary"`
	Instruments []*service.PriceResponse   `json:"instruments"`
	Books       []*service.BookResponse    `json:"books"`
	Accounts    []*service.BalanceResponse `json:"accounts"`
	Totals      *service.TotalsResponse    `json:"totals"`
	Statuses    map[domain.OrderStatus]int `json:"order_statuses"`
	Orders      *AccountOrders             `json:"orders,omitempty"`
	Metrics     []metrics.Sample           `json:"metrics,omitempty"`
}

// AccountOrders is the newest page of one account's orders.
type AccountOrders struct {
	AccountID int         `json:"account_id"`
	Total     int         `json:"total"`
	Orders    []OrderLine `json:"orders"`
}

// OrderLine is the printable form of an order.
type OrderLine struct {
	ID             int64              `json:"order_id"`
	Symbol         string             `json:"symbol"`
	Side           domain.OrderSide   `json:"side"`
	Price          int64              `json:"price"`
	Quantity       int64              `json:"quantity"`
	Filled         int64              `json:"filled"`
	Expiry         string             `json:"expiry"`
	SubmittedRound int                `json:"submitted_round"`
	Status         domain.OrderStatus `json:"status"`
}

// Builder gathers a Report from the read-only services.
type Builder struct {
	Market   *service.MarketService
	Accounts *service.AccountService
	Depth    int // book levels per side
}

// Build assembles the market-wide part of the report.
func (b *Builder) Build(seed int64, summary simulation.Summary) (*Report, error) {
	r := &Report{
		Seed:     seed,
		Summary:  summary,
		Totals:   b.Market.Totals(),
		Statuses: b.Accounts.StatusCounts(),
	}

	for _, symbol := range b.Market.Symbols() {
		price, err := b.Market.GetPrice(symbol)
		if err != nil {
			return nil, err
		}
		book, err := b.Market.GetBook(symbol, b.Depth)
		if err != nil {
			return nil, err
		}
		r.Instruments = append(r.Instruments, price)
		r.Books = append(r.Books, book)
	}

	balances, err := b.Accounts.Balances()
	if err != nil {
		return nil, err
	}
	r.Accounts = balances
	return r, nil
}

// AccountOrders returns the limit newest orders of accountID.
func (b *Builder) AccountOrders(accountID, limit int) (*AccountOrders, error) {
	orders, total, err := b.Accounts.ListOrders(accountID, nil, 1, limit)
	if err != nil {
		return nil, err
	}
	out := &AccountOrders{
		AccountID: accountID,
		Total:     total,
		Orders:    make([]OrderLine, len(orders)),
	}
	for i, o := range orders {
		out.Orders[i] = toOrderLine(o)
	}
	return out, nil
}

func toOrderLine(o *domain.Order) OrderLine {
	expiry := o.Expiry.Kind.String()
	if o.Expiry.Kind == domain.ExpiryValidUntilRound {
		expiry = fmt.Sprintf("%s(%d)", expiry, o.Expiry.Round)
	}
	return OrderLine{
		ID:             o.ID,
		Symbol:         o.Symbol,
		Side:           o.Side,
		Price:          o.Price,
		Quantity:       o.Quantity,
		Filled:         o.Filled,
		Expiry:         expiry,
		SubmittedRound: o.SubmittedRound,
		Status:         o.Status,
	}
}
