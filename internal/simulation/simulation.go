// Package simulation runs the market round by round: traders decide in a
// freshly shuffled order, the matcher settles, and price history advances.
package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/efreitasn/roundexchange/internal/domain"
	"github.com/efreitasn/roundexchange/internal/engine"
	"github.com/efreitasn/roundexchange/internal/history"
	"github.com/efreitasn/roundexchange/internal/metrics"
	"github.com/efreitasn/roundexchange/internal/store"
	"github.com/efreitasn/roundexchange/internal/strategy"
)

// Market is the state a simulation runs over.
type Market struct {
	Instruments *domain.InstrumentRegistry
	Accounts    *store.AccountStore
	Orders      *store.OrderStore
	Trades      *store.TradeStore
	Books       *engine.BookManager
}

// NewMarket creates an empty market.
func NewMarket() *Market {
	return &Market{
		Instruments: domain.NewInstrumentRegistry(),
		Accounts:    store.NewAccountStore(),
		Orders:      store.NewOrderStore(),
		Trades:      store.NewTradeStore(),
		Books:       engine.NewBookManager(),
	}
}

// Config tunes a Simulation. Zero values fall back to defaults; a nil
// Logger or Metrics disables that output.
type Config struct {
	Seed        int64
	HistorySize int
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// Summary totals a run.
type Summary struct {
	Rounds    int   `json:"rounds"`
	Trades    int   `json:"trades"`
	Volume    int64 `json:"volume"`
	Cancelled int   `json:"cancelled"`
	Expired   int   `json:"expired"`
}

func (s *Summary) add(res *engine.RoundResult) {
	s.Rounds++
	s.Trades += len(res.Trades)
	s.Volume += res.Volume
	s.Cancelled += len(res.Cancelled)
	s.Expired += len(res.Expired)
}

// Simulation is the round scheduler. It is not safe for concurrent use;
// rounds run strictly one after another.
type Simulation struct {
	market  *Market
	matcher *engine.Matcher
	history *history.Tracker
	orders  *domain.OrderFactory
	traders []strategy.Trader
	rng     *rand.Rand
	round   int
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New wires a simulation over market. Every trader must own an account in
// market.Accounts.
func New(market *Market, traders []strategy.Trader, cfg Config) (*Simulation, error) {
	for _, tr := range traders {
		if !market.Accounts.Exists(tr.AccountID()) {
			return nil, fmt.Errorf("trader %s: %w: %d", tr.Kind(), domain.ErrAccountNotFound, tr.AccountID())
		}
	}
	if cfg.HistorySize == 0 {
		cfg.HistorySize = history.DefaultCapacity
	}
	tracker, err := history.NewTracker(cfg.HistorySize)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Simulation{
		market:  market,
		history: tracker,
		orders:  domain.NewOrderFactory(),
		traders: traders,
		metrics: cfg.Metrics,
		logger:  logger,
	}
	s.matcher = engine.NewMatcher(market.Books, market.Accounts, market.Orders, market.Trades,
		market.Instruments, cfg.Metrics, logger.Named("matcher"))
	s.Reseed(cfg.Seed)
	return s, nil
}

// Reseed resets the source that orders traders each round, so that a run
// can be replayed.
func (s *Simulation) Reseed(seed int64) {
	s.rng = rand.New(rand.NewPCG(uint64(seed), 0))
}

// Round returns the number of the next round to run.
func (s *Simulation) Round() int { return s.round }

// History exposes the price tracker for reporting.
func (s *Simulation) History() *history.Tracker { return s.history }

// Matcher exposes the matcher so callers can submit orders outside the
// trader population.
func (s *Simulation) Matcher() *engine.Matcher { return s.matcher }

// Step runs one round. A trader that produces an invalid order aborts the
// round with an error: strategies are expected to only emit valid orders.
func (s *Simulation) Step() (*engine.RoundResult, error) {
	round := s.round

	for _, inst := range s.market.Instruments.All() {
		s.history.RecordTrade(inst.Symbol, inst.LastPrice)
	}

	order := make([]strategy.Trader, len(s.traders))
	copy(order, s.traders)
	s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, tr := range order {
		acct, err := s.market.Accounts.Get(tr.AccountID())
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		o, err := tr.Decide(strategy.RoundState{
			Round:       round,
			Instruments: s.market.Instruments,
			Account:     acct,
			History:     s.history,
			Orders:      s.orders,
		})
		if err != nil {
			return nil, fmt.Errorf("round %d: trader %d (%s): %w", round, tr.AccountID(), tr.Kind(), err)
		}
		if o == nil {
			continue
		}
		if o.AccountID != tr.AccountID() {
			return nil, fmt.Errorf("round %d: trader %d submitted order %d for account %d",
				round, tr.AccountID(), o.ID, o.AccountID)
		}
		if err := s.matcher.Submit(o, round); err != nil {
			return nil, fmt.Errorf("round %d: trader %d (%s): %w", round, tr.AccountID(), tr.Kind(), err)
		}
	}

	res := s.matcher.Settle(round)
	s.history.UpdateSignals()
	s.round++

	s.metrics.RoundCompleted()
	s.logger.Debug("round settled",
		zap.Int("round", round),
		zap.Int("trades", len(res.Trades)),
		zap.Int64("volume", res.Volume),
		zap.Int("cancelled", len(res.Cancelled)),
		zap.Int("expired", len(res.Expired)),
	)
	return res, nil
}

// Run executes exactly rounds rounds. The only early exit besides a trader
// error is cancellation of ctx, checked between rounds.
func (s *Simulation) Run(ctx context.Context, rounds int) (Summary, error) {
	var sum Summary
	if rounds <= 0 {
		return sum, &domain.ValidationError{Message: fmt.Sprintf("rounds must be > 0, got %d", rounds)}
	}

	s.logger.Info("simulation started",
		zap.Int("rounds", rounds),
		zap.Int("traders", len(s.traders)),
		zap.Int("first_round", s.round),
	)
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("simulation aborted", zap.Int("round", s.round), zap.Error(err))
			return sum, fmt.Errorf("aborted before round %d: %w", s.round, err)
		}
		res, err := s.Step()
		if err != nil {
			return sum, err
		}
		sum.add(res)
	}
	s.logger.Info("simulation finished",
		zap.Int("rounds", sum.Rounds),
		zap.Int("trades", sum.Trades),
		zap.Int64("volume", sum.Volume),
		zap.Int("cancelled", sum.Cancelled),
		zap.Int("expired", sum.Expired),
	)
	return sum, nil
}
