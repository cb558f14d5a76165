// Package strategy holds the trading behaviours that drive the simulated
// market. A trader sees one RoundState per round and answers with at most
// one order.
package strategy

import (
	"github.com/efreitasn/roundexchange/internal/domain"
	"github.com/efreitasn/roundexchange/internal/history"
)

// RoundState is what a trader may look at when deciding. Account is the
// trader's own account; traders must not mutate it.
type RoundState struct {
	Round       int
	Instruments *domain.InstrumentRegistry
	Account     *domain.Account
	History     *history.Tracker
	Orders      *domain.OrderFactory
}

// Trader decides on at most one order per round. A nil order with a nil
// error means the trader sits the round out.
type Trader interface {
	AccountID() int
	Kind() Kind
	Decide(RoundState) (*domain.Order, error)
}

// Kind names a trading strategy.
type Kind string

const (
	KindRandom Kind = "random"
	KindSMA    Kind = "sma"
)
