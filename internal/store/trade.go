package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/roundexchange/internal/domain"
)

// TradeStore is the append-only trade tape, one chronological list per
// symbol. Rounds never decrease along a list, which Since relies on.
type TradeStore struct {
	mu       sync.RWMutex
	bySymbol map[string][]*domain.Trade
	count    int
}

func NewTradeStore() *TradeStore {
	return &TradeStore{bySymbol: make(map[string][]*domain.Trade)}
}

// Append records an executed trade on its symbol's tape.
func (s *TradeStore) Append(t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bySymbol[t.Symbol] = append(s.bySymbol[t.Symbol], t)
	s.count++
}

// GetBySymbol returns a copy of symbol's whole tape, oldest first. The
// result is empty, not nil, for a symbol that never traded.
func (s *TradeStore) GetBySymbol(symbol string) []*domain.Trade {
	return s.Since(symbol, 0)
}

// Since returns the trades of symbol executed in round from or later,
// oldest first.
func (s *TradeStore) Since(symbol string, from int) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tape := s.bySymbol[symbol]
	i := sort.Search(len(tape), func(i int) bool { return tape[i].Round >= from })
	out := make([]*domain.Trade, len(tape)-i)
	copy(out, tape[i:])
	return out
}

// Last returns the most recent trade of symbol.
func (s *TradeStore) Last(symbol string) (*domain.Trade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tape := s.bySymbol[symbol]
	if len(tape) == 0 {
		return nil, false
	}
	return tape[len(tape)-1], true
}

// Count returns the number of trades of symbol.
func (s *TradeStore) Count(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bySymbol[symbol])
}

// Len returns the number of trades across all symbols.
func (s *TradeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
