package strategy

import (
	"github.com/efreitasn/roundexchange/internal/domain"
)

const (
	// smaWarmupRounds is the number of rounds the crossover trader waits
	// for the long average to fill.
	smaWarmupRounds = 10
	// smaValidRounds is how long crossover orders stay on the book.
	smaValidRounds = 3
)

// SMACrossover buys on a bullish crossover of the short and long moving
// averages and sells half its position on a bearish one. Instruments are
// checked in symbol order; the first one with a signal wins the round.
type SMACrossover struct {
	accountID int
}

// NewSMACrossover creates a crossover trader for accountID.
func NewSMACrossover(accountID int) *SMACrossover {
	return &SMACrossover{accountID: accountID}
}

// AccountID returns the account the trader acts for.
func (c *SMACrossover) AccountID() int { return c.accountID }

// Kind returns KindSMA.
func (c *SMACrossover) Kind() Kind { return KindSMA }

// Decide trades the first instrument, in symbol order, showing a
// crossover. It does nothing during warm-up.
func (c *SMACrossover) Decide(s RoundState) (*domain.Order, error) {
	if s.Round < smaWarmupRounds {
		return nil, nil
	}
	for _, inst := range s.Instruments.All() {
		switch {
		case s.History.HasBullishCrossover(inst.Symbol):
			affordable := s.Account.Cash / inst.LastPrice
			if affordable == 0 {
				continue
			}
			return c.order(s, inst, domain.OrderSideBuy, max(1, affordable/10))
		case s.History.HasBearishCrossover(inst.Symbol):
			held := s.Account.Quantity(inst.Symbol)
			if held == 0 {
				continue
			}
			return c.order(s, inst, domain.OrderSideSell, max(1, held/2))
		}
	}
	return nil, nil
}

func (c *SMACrossover) order(s RoundState, inst *domain.Instrument, side domain.OrderSide, qty int64) (*domain.Order, error) {
	return s.Orders.New(domain.OrderRequest{
		AccountID: c.accountID,
		Symbol:    inst.Symbol,
		Side:      side,
		Price:     inst.LastPrice,
		Quantity:  qty,
		Expiry:    domain.ValidUntil(s.Round + smaValidRounds),
	})
}
