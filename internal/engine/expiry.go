package engine

import (
	"go.uber.org/zap"

	"github.com/efreitasn/roundexchange/internal/domain"
)

// PurgeExpired removes every resting order whose expiry policy has lapsed
// as of round and marks it expired. Orders that were partially filled keep
// their filled quantity; only the remainder lapses. Returned orders are in
// book order, bids before asks, books by symbol.
func (m *Matcher) PurgeExpired(round int) []*domain.Order {
	var expired []*domain.Order
	for _, book := range m.books.Books() {
		book.Lock()
		expired = append(expired, expireSide(book, book.Bids(), round)...)
		expired = append(expired, expireSide(book, book.Asks(), round)...)
		book.Unlock()
	}

	for _, o := range expired {
		m.metrics.OrderExpired()
		m.logger.Debug("order expired",
			zap.Int64("order_id", o.ID),
			zap.Int("account_id", o.AccountID),
			zap.String("symbol", o.Symbol),
			zap.Int64("remaining", o.Remaining),
			zap.Stringer("expiry", o.Expiry.Kind),
			zap.Int("round", round),
		)
	}
	return expired
}

// expireSide must be called with the book's write lock held.
func expireSide(book *OrderBook, orders []*domain.Order, round int) []*domain.Order {
	var expired []*domain.Order
	for _, o := range orders {
		if !o.Expired(round) {
			continue
		}
		book.Remove(o.ID)
		o.Status = domain.OrderStatusExpired
		expired = append(expired, o)
	}
	return expired
}
