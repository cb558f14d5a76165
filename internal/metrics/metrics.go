// Package metrics holds the process-level counters exported by the
// matching engine and the round scheduler.
package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "roundexchange"

// Metrics groups every counter on a private registry so that parallel
// simulations (and tests) never share state. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Rounds          prometheus.Counter
	OrdersSubmitted *prometheus.CounterVec
	Trades          prometheus.Counter
	SharesTraded    prometheus.Counter
	OrdersCancelled prometheus.Counter
	OrdersExpired   prometheus.Counter
}

// New creates the counters and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Rounds completed by the scheduler.",
		}),
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Orders placed on a book, by expiry policy.",
		}, []string{"expiry"}),
		Trades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Executed trades.",
		}),
		SharesTraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_traded_total",
			Help:      "Shares moved between accounts by executed trades.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "Orders removed because the owner could no longer honour them.",
		}),
		OrdersExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_expired_total",
			Help:      "Orders removed by the end-of-round expiry sweep.",
		}),
	}
	m.registry.MustRegister(m.Rounds, m.OrdersSubmitted, m.Trades, m.SharesTraded, m.OrdersCancelled, m.OrdersExpired)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RoundCompleted() {
	if m == nil {
		return
	}
	m.Rounds.Inc()
}

func (m *Metrics) OrderSubmitted(expiry string) {
	if m == nil {
		return
	}
	m.OrdersSubmitted.WithLabelValues(expiry).Inc()
}

func (m *Metrics) TradeExecuted(qty int64) {
	if m == nil {
		return
	}
	m.Trades.Inc()
	m.SharesTraded.Add(float64(qty))
}

func (m *Metrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.OrdersCancelled.Inc()
}

func (m *Metrics) OrderExpired() {
	if m == nil {
		return
	}
	m.OrdersExpired.Inc()
}

// Sample is one gathered counter value.
type Sample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// Snapshot gathers every counter, ordered by name.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	var samples []Sample
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := make(map[string]string, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			samples = append(samples, Sample{
				Name:   mf.GetName(),
				Labels: labels,
				Value:  metric.GetCounter().GetValue(),
			})
		}
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}
