package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.RoundCompleted()
	m.OrderSubmitted("instant")
	m.OrderSubmitted("instant")
	m.OrderSubmitted("indefinite")
	m.TradeExecuted(5)
	m.TradeExecuted(3)
	m.OrderCancelled()
	m.OrderExpired()

	if got := testutil.ToFloat64(m.Rounds); got != 1 {
		t.Errorf("rounds = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.OrdersSubmitted.WithLabelValues("instant")); got != 2 {
		t.Errorf("instant orders = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Trades); got != 2 {
		t.Errorf("trades = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SharesTraded); got != 8 {
		t.Errorf("shares = %v, want 8", got)
	}
	if got := testutil.ToFloat64(m.OrdersCancelled); got != 1 {
		t.Errorf("cancelled = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.OrdersExpired); got != 1 {
		t.Errorf("expired = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RoundCompleted()
	m.OrderSubmitted("instant")
	m.TradeExecuted(1)
	m.OrderCancelled()
	m.OrderExpired()
}

func TestMetrics_Snapshot(t *testing.T) {
	m := New()
	m.TradeExecuted(4)
	m.OrderSubmitted("all_or_nothing")

	samples, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	found := map[string]float64{}
	for _, s := range samples {
		key := s.Name
		if exp, ok := s.Labels["expiry"]; ok {
			key += "/" + exp
		}
		found[key] = s.Value
	}
	if found["roundexchange_shares_traded_total"] != 4 {
		t.Errorf("shares_traded_total = %v, want 4", found["roundexchange_shares_traded_total"])
	}
	if found["roundexchange_orders_submitted_total/all_or_nothing"] != 1 {
		t.Errorf("orders_submitted_total{all_or_nothing} = %v, want 1", found["roundexchange_orders_submitted_total/all_or_nothing"])
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Name < samples[i-1].Name {
			t.Fatalf("samples not sorted: %s before %s", samples[i-1].Name, samples[i].Name)
		}
	}
}
