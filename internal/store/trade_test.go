package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/efreitasn/roundexchange/internal/domain"
)

func newTestTrade(id, symbol string, round int) *domain.Trade {
	return &domain.Trade{
		TradeID:  id,
		Symbol:   symbol,
		Price:    100,
		Quantity: 10,
		Round:    round,
	}
}

func TestTradeStore_AppendAndGetBySymbol(t *testing.T) {
	s := NewTradeStore()
	s.Append(newTestTrade("trade-1", "APL", 1))
	s.Append(newTestTrade("trade-2", "APL", 2))
	s.Append(newTestTrade("trade-3", "MSFT", 2))

	trades := s.GetBySymbol("APL")
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].TradeID != "trade-1" || trades[1].TradeID != "trade-2" {
		t.Fatalf("trades out of order: %s, %s", trades[0].TradeID, trades[1].TradeID)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}

func TestTradeStore_GetBySymbol_Empty(t *testing.T) {
	s := NewTradeStore()
	trades := s.GetBySymbol("NONE")
	if trades == nil || len(trades) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", trades)
	}
}

func TestTradeStore_GetBySymbol_ReturnsCopy(t *testing.T) {
	s := NewTradeStore()
	s.Append(newTestTrade("trade-1", "APL", 1))

	trades := s.GetBySymbol("APL")
	trades[0] = nil

	if s.GetBySymbol("APL")[0] == nil {
		t.Fatal("mutating the returned slice changed the store")
	}
}

func TestTradeStore_Since(t *testing.T) {
	s := NewTradeStore()
	for i, round := range []int{0, 0, 2, 3, 3, 7} {
		s.Append(newTestTrade(fmt.Sprintf("t%d", i), "APL", round))
	}

	tests := []struct {
		from int
		want []string
	}{
		{0, []string{"t0", "t1", "t2", "t3", "t4", "t5"}},
		{1, []string{"t2", "t3", "t4", "t5"}},
		{3, []string{"t3", "t4", "t5"}},
		{4, []string{"t5"}},
		{8, nil},
	}
	for _, tc := range tests {
		got := s.Since("APL", tc.from)
		if len(got) != len(tc.want) {
			t.Fatalf("Since(%d) returned %d trades, want %d", tc.from, len(got), len(tc.want))
		}
		for i := range got {
			if got[i].TradeID != tc.want[i] {
				t.Errorf("Since(%d)[%d] = %s, want %s", tc.from, i, got[i].TradeID, tc.want[i])
			}
		}
	}
}

func TestTradeStore_LastAndCount(t *testing.T) {
	s := NewTradeStore()
	if _, ok := s.Last("APL"); ok {
		t.Fatal("Last on empty tape should report false")
	}
	s.Append(newTestTrade("a", "APL", 1))
	s.Append(newTestTrade("b", "APL", 4))
	s.Append(newTestTrade("c", "MSFT", 5))

	last, ok := s.Last("APL")
	if !ok || last.TradeID != "b" {
		t.Errorf("Last(APL) = %v, %v; want b", last, ok)
	}
	if s.Count("APL") != 2 || s.Count("MSFT") != 1 || s.Count("GOOGL") != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/1/0", s.Count("APL"), s.Count("MSFT"), s.Count("GOOGL"))
	}
}

func TestTradeStore_ConcurrentAppend(t *testing.T) {
	s := NewTradeStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(round int) {
			defer wg.Done()
			s.Append(newTestTrade("t", "APL", round))
		}(i)
	}
	wg.Wait()
	if got := len(s.GetBySymbol("APL")); got != 100 {
		t.Fatalf("expected 100 trades, got %d", got)
	}
}
