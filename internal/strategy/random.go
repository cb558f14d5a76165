package strategy

import (
	"math/rand/v2"

	"github.com/efreitasn/roundexchange/internal/domain"
)

// maxPriceOffset bounds how far a random quote strays from the last price:
// the offset is drawn from [-maxPriceOffset, maxPriceOffset-1].
const maxPriceOffset = 5

// RandomChoice flips a coin between buying and selling, picks an instrument
// at random and quotes around its last price.
type RandomChoice struct {
	accountID int
	rng       *rand.Rand
}

// NewRandomChoice creates a random trader for accountID drawing from rng.
func NewRandomChoice(accountID int, rng *rand.Rand) *RandomChoice {
	return &RandomChoice{accountID: accountID, rng: rng}
}

// AccountID returns the account the trader acts for.
func (r *RandomChoice) AccountID() int { return r.accountID }

// Kind returns KindRandom.
func (r *RandomChoice) Kind() Kind { return KindRandom }

// Decide quotes one buy or sell around an instrument's last price, or
// nothing when the account can neither afford nor sell anything.
func (r *RandomChoice) Decide(s RoundState) (*domain.Order, error) {
	if r.rng.IntN(2) == 0 {
		return r.buy(s)
	}
	return r.sell(s)
}

func (r *RandomChoice) buy(s RoundState) (*domain.Order, error) {
	instruments := s.Instruments.All()
	if len(instruments) == 0 {
		return nil, nil
	}
	inst := instruments[r.rng.IntN(len(instruments))]
	price := r.quote(inst.LastPrice)
	affordable := s.Account.Cash / price
	if affordable == 0 {
		return nil, nil
	}
	return s.Orders.New(domain.OrderRequest{
		AccountID: r.accountID,
		Symbol:    inst.Symbol,
		Side:      domain.OrderSideBuy,
		Price:     price,
		Quantity:  1 + r.rng.Int64N(affordable),
		Expiry:    r.expiry(s.Round),
	})
}

func (r *RandomChoice) sell(s RoundState) (*domain.Order, error) {
	var held []*domain.Instrument
	for _, inst := range s.Instruments.All() {
		if s.Account.Quantity(inst.Symbol) > 0 {
			held = append(held, inst)
		}
	}
	if len(held) == 0 {
		return nil, nil
	}
	inst := held[r.rng.IntN(len(held))]
	return s.Orders.New(domain.OrderRequest{
		AccountID: r.accountID,
		Symbol:    inst.Symbol,
		Side:      domain.OrderSideSell,
		Price:     r.quote(inst.LastPrice),
		Quantity:  1 + r.rng.Int64N(s.Account.Quantity(inst.Symbol)),
		Expiry:    r.expiry(s.Round),
	})
}

func (r *RandomChoice) quote(last int64) int64 {
	return max(1, last+r.rng.Int64N(2*maxPriceOffset)-maxPriceOffset)
}

// expiry mostly picks a short validity window, sometimes a single-round
// order, and rarely one that never lapses.
func (r *RandomChoice) expiry(round int) domain.Expiry {
	switch roll := r.rng.IntN(20); {
	case roll < 14:
		return domain.ValidUntil(round + 1 + r.rng.IntN(5))
	case roll < 17:
		return domain.Instant()
	case roll < 19:
		return domain.AllOrNothing()
	default:
		return domain.Indefinite()
	}
}
