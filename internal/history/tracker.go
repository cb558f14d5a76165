// Package history keeps a bounded window of recent prices per instrument
// and derives simple-moving-average crossover signals from it.
package history

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/roundexchange/internal/domain"
)

const (
	// DefaultCapacity is the number of prices remembered per instrument.
	DefaultCapacity = 10

	ShortWindow = 5
	LongWindow  = 10
)

type averages struct {
	short decimal.Decimal
	long  decimal.Decimal
}

func (a averages) spread() decimal.Decimal {
	return a.short.Sub(a.long)
}

// Tracker records a FIFO of recent prices per symbol. UpdateSignals
// snapshots the short and long averages so that the next round can detect
// a crossover. Safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	capacity int
	prices   map[string][]int64 // oldest first
	previous map[string]averages
}

// NewTracker creates a tracker remembering capacity prices per symbol.
// capacity must cover the long window.
func NewTracker(capacity int) (*Tracker, error) {
	if capacity < LongWindow {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("history capacity must be >= %d, got %d", LongWindow, capacity)}
	}
	return &Tracker{
		capacity: capacity,
		prices:   make(map[string][]int64),
		previous: make(map[string]averages),
	}, nil
}

// RecordTrade appends price to symbol's window, dropping the oldest sample
// once the window is full.
func (t *Tracker) RecordTrade(symbol string, price int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	window := append(t.prices[symbol], price)
	if len(window) > t.capacity {
		window = window[len(window)-t.capacity:]
	}
	t.prices[symbol] = window
}

// Len returns the number of samples held for symbol.
func (t *Tracker) Len(symbol string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.prices[symbol])
}

// MovingAverage returns the mean of the most recent min(n, len) samples,
// or zero when nothing has been recorded.
func (t *Tracker) MovingAverage(symbol string, n int) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.movingAverage(symbol, n)
}

func (t *Tracker) movingAverage(symbol string, n int) decimal.Decimal {
	window := t.prices[symbol]
	if n <= 0 || len(window) == 0 {
		return decimal.Zero
	}
	if n > len(window) {
		n = len(window)
	}
	sum := decimal.Zero
	for _, p := range window[len(window)-n:] {
		sum = sum.Add(decimal.NewFromInt(p))
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

func (t *Tracker) current(symbol string) averages {
	return averages{
		short: t.movingAverage(symbol, ShortWindow),
		long:  t.movingAverage(symbol, LongWindow),
	}
}

// UpdateSignals stores the current short and long averages of every symbol
// as the reference point for the next crossover check.
func (t *Tracker) UpdateSignals() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for symbol := range t.prices {
		t.previous[symbol] = t.current(symbol)
	}
}

// Signals returns the averages stored by the last UpdateSignals call.
func (t *Tracker) Signals(symbol string) (short, long decimal.Decimal, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	prev, ok := t.previous[symbol]
	return prev.short, prev.long, ok
}

// HasBullishCrossover reports whether the short average has moved above the
// long one since the last UpdateSignals. Without a previous evaluation
// there is no signal.
func (t *Tracker) HasBullishCrossover(symbol string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	prev, ok := t.previous[symbol]
	if !ok {
		return false
	}
	return t.current(symbol).spread().IsPositive() && prev.spread().IsNegative()
}

// HasBearishCrossover reports whether the short average has moved below the
// long one since the last UpdateSignals.
func (t *Tracker) HasBearishCrossover(symbol string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	prev, ok := t.previous[symbol]
	if !ok {
		return false
	}
	return t.current(symbol).spread().IsNegative() && prev.spread().IsPositive()
}
