package domain

import (
	"fmt"
	"sort"
	"sync"
)

// Instrument is a tradable security and its last traded price.
type Instrument struct {
	Symbol         string
	LastPrice      int64
	LastTradeRound int
}

// InstrumentRegistry owns every instrument, keyed by symbol.
// Safe for concurrent use.
type InstrumentRegistry struct {
	mu          sync.RWMutex
	instruments map[string]*Instrument
}

// NewInstrumentRegistry creates an empty InstrumentRegistry.
func NewInstrumentRegistry() *InstrumentRegistry {
	return &InstrumentRegistry{
		instruments: make(map[string]*Instrument),
	}
}

// Create registers a new instrument with an opening price. It returns
// ErrInstrumentAlreadyExists for a duplicate symbol.
func (r *InstrumentRegistry) Create(symbol string, price int64) (*Instrument, error) {
	if symbol == "" {
		return nil, &ValidationError{Message: "instrument symbol is required"}
	}
	if price <= 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("instrument %s: price must be > 0, got %d", symbol, price)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instruments[symbol]; exists {
		return nil, fmt.Errorf("%w: %s", ErrInstrumentAlreadyExists, symbol)
	}
	inst := &Instrument{Symbol: symbol, LastPrice: price}
	r.instruments[symbol] = inst
	return inst, nil
}

// Get looks up an instrument by symbol. It returns ErrInstrumentNotFound
// if the symbol was never created.
func (r *InstrumentRegistry) Get(symbol string) (*Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instruments[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstrumentNotFound, symbol)
	}
	return inst, nil
}

// Exists returns true if the symbol has been created.
func (r *InstrumentRegistry) Exists(symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.instruments[symbol]
	return ok
}

// All returns every instrument ordered by symbol.
func (r *InstrumentRegistry) All() []*Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Instrument, 0, len(r.instruments))
	for _, inst := range r.instruments {
		all = append(all, inst)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Symbol < all[j].Symbol })
	return all
}

// RecordTrade sets the instrument's last traded price and round.
func (r *InstrumentRegistry) RecordTrade(symbol string, price int64, round int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instruments[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInstrumentNotFound, symbol)
	}
	inst.LastPrice = price
	inst.LastTradeRound = round
	return nil
}
