package scenario

import (
	"fmt"
	"math/rand/v2"

	"github.com/efreitasn/roundexchange/internal/domain"
	"github.com/efreitasn/roundexchange/internal/simulation"
	"github.com/efreitasn/roundexchange/internal/strategy"
)

// Populate lists the scenario's instruments on market, opens one account
// per trader (ids from 1, in file order) and returns the traders. Random
// traders draw from sources derived from seed and their account id, so the
// same seed reproduces the same decisions.
func (sc *Scenario) Populate(market *simulation.Market, seed int64) ([]strategy.Trader, error) {
	for _, l := range sc.Listings {
		if _, err := market.Instruments.Create(l.Symbol, l.Price); err != nil {
			return nil, fmt.Errorf("list %s: %w", l.Symbol, err)
		}
	}

	traders := make([]strategy.Trader, 0, len(sc.Traders))
	for i, kind := range sc.Traders {
		id := i + 1
		acct, err := domain.NewAccount(id, sc.Cash, sc.Holdings)
		if err != nil {
			return nil, err
		}
		if err := market.Accounts.Create(acct); err != nil {
			return nil, fmt.Errorf("open account: %w", err)
		}

		switch kind {
		case strategy.KindRandom:
			rng := rand.New(rand.NewPCG(uint64(seed), uint64(id)))
			traders = append(traders, strategy.NewRandomChoice(id, rng))
		case strategy.KindSMA:
			traders = append(traders, strategy.NewSMACrossover(id))
		default:
			return nil, &domain.ValidationError{Message: fmt.Sprintf("trader %d: unknown kind %q", id, kind)}
		}
	}
	return traders, nil
}
