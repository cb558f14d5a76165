package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/efreitasn/roundexchange/internal/domain"
	"github.com/efreitasn/roundexchange/internal/metrics"
	"github.com/efreitasn/roundexchange/internal/store"
)

// RoundResult summarises one settlement pass.
type RoundResult struct {
	Round     int
	Trades    []*domain.Trade
	Volume    int64
	Cancelled []*domain.Order
	Expired   []*domain.Order
}

// Matcher clears the resting orders of every book once per round.
// It is the only writer of account balances, holdings and last prices.
type Matcher struct {
	books       *BookManager
	accounts    *store.AccountStore
	orders      *store.OrderStore
	trades      *store.TradeStore
	instruments *domain.InstrumentRegistry
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewMatcher creates a new Matcher with the given dependencies. A nil
// logger or metrics disables that output.
func NewMatcher(
	books *BookManager,
	accounts *store.AccountStore,
	orders *store.OrderStore,
	trades *store.TradeStore,
	instruments *domain.InstrumentRegistry,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		books:       books,
		accounts:    accounts,
		orders:      orders,
		trades:      trades,
		instruments: instruments,
		metrics:     m,
		logger:      logger,
	}
}

// Submit places an order on its instrument's book for the given round.
// The order must reference a known instrument and account and must not
// have been submitted before.
func (m *Matcher) Submit(order *domain.Order, round int) error {
	if !m.instruments.Exists(order.Symbol) {
		return fmt.Errorf("submit order %d: %w: %s", order.ID, domain.ErrInstrumentNotFound, order.Symbol)
	}
	if !m.accounts.Exists(order.AccountID) {
		return fmt.Errorf("submit order %d: %w: %d", order.ID, domain.ErrAccountNotFound, order.AccountID)
	}
	if order.Status != domain.OrderStatusPending || order.Remaining <= 0 {
		return &domain.ValidationError{Message: fmt.Sprintf("order %d is not a fresh order (status %s)", order.ID, order.Status)}
	}
	if _, err := m.orders.Get(order.ID); err == nil {
		return &domain.ValidationError{Message: fmt.Sprintf("order %d was already submitted", order.ID)}
	}

	book := m.books.GetOrCreate(order.Symbol)
	book.Lock()
	defer book.Unlock()

	order.SubmittedRound = round
	m.orders.Create(order)
	book.Insert(order)

	m.metrics.OrderSubmitted(order.Expiry.Kind.String())
	m.logger.Debug("order submitted",
		zap.Int64("order_id", order.ID),
		zap.Int("account_id", order.AccountID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.Int64("price", order.Price),
		zap.Int64("quantity", order.Quantity),
		zap.Stringer("expiry", order.Expiry.Kind),
		zap.Int("round", round),
	)
	return nil
}

// Settle executes every possible trade on every book for round, then
// purges expired orders.
func (m *Matcher) Settle(round int) *RoundResult {
	res := &RoundResult{Round: round}
	for _, book := range m.books.Books() {
		book.Lock()
		m.matchBook(book, round, res)
		book.Unlock()
	}
	res.Expired = m.PurgeExpired(round)
	return res
}

// matchBook walks bids best-first and, for each, asks best-first until
// the bid is gone or prices no longer cross. Both sides are iterated over
// snapshots so filled and cancelled orders can be removed mid-scan.
func (m *Matcher) matchBook(book *OrderBook, round int, res *RoundResult) {
	bids := book.Bids()

bidLoop:
	for i, bid := range bids {
		if !book.Contains(bid.ID) {
			continue
		}
		asks := book.Asks()
		for j, ask := range asks {
			if !book.Contains(bid.ID) {
				continue bidLoop
			}
			if !book.Contains(ask.ID) {
				continue
			}
			// Asks ascend, so nothing further can cross this bid.
			if bid.Price < ask.Price {
				continue bidLoop
			}

			switch {
			case bid.AllOrNothing() && ask.AllOrNothing():
				continue
			case bid.AllOrNothing():
				// The candidate set only shrinks from here on, so one
				// evaluation decides this bid for the round.
				m.fillAllOrNothing(book, bid, liveFrom(book, asks[j:]), round, res)
				continue bidLoop
			case ask.AllOrNothing():
				m.fillAllOrNothing(book, ask, liveFrom(book, bids[i:]), round, res)
				continue
			}

			m.matchPair(book, bid, ask, round, res)
		}
	}
}

// matchPair trades min(remaining) shares between bid and ask at the
// earlier order's limit. If either account cannot cover its leg, nothing
// moves and any order its owner can no longer honour is cancelled.
func (m *Matcher) matchPair(book *OrderBook, bid, ask *domain.Order, round int, res *RoundResult) {
	price := clearingPrice(bid, ask)
	qty := min(bid.Remaining, ask.Remaining)

	err := m.execute(book, bid, ask, qty, price, round, res)
	if err == nil {
		return
	}

	m.logger.Debug("trade not executed",
		zap.String("symbol", book.Symbol()),
		zap.Int64("bid_id", bid.ID),
		zap.Int64("ask_id", ask.ID),
		zap.Int64("quantity", qty),
		zap.Int64("price", price),
		zap.Error(err),
	)
	m.cancelIfInsolvent(book, ask, res)
	m.cancelIfInsolvent(book, bid, res)
}

// allOrNothingLeg is one planned fill of an all-or-nothing order.
type allOrNothingLeg struct {
	counter *domain.Order
	qty     int64
	price   int64
}

// fillAllOrNothing fills aon completely against candidates (in priority
// order) or does nothing. Candidates that are themselves all-or-nothing or
// whose price does not cross are skipped. Every leg is checked for
// affordability before the first one executes, so the order can never be
// left partially filled. It reports whether the order was filled.
func (m *Matcher) fillAllOrNothing(book *OrderBook, aon *domain.Order, candidates []*domain.Order, round int, res *RoundResult) bool {
	need := aon.Remaining
	var legs []allOrNothingLeg
	for _, c := range candidates {
		if need == 0 {
			break
		}
		if c.AllOrNothing() || c.Side == aon.Side {
			continue
		}
		bid, ask := orient(aon, c)
		if bid.Price < ask.Price {
			continue
		}
		qty := min(need, c.Remaining)
		legs = append(legs, allOrNothingLeg{counter: c, qty: qty, price: clearingPrice(aon, c)})
		need -= qty
	}
	if need > 0 {
		m.logger.Debug("all-or-nothing order lacks liquidity",
			zap.Int64("order_id", aon.ID),
			zap.Int64("remaining", aon.Remaining),
			zap.Int64("short_by", need),
		)
		return false
	}
	if !m.legsAffordable(book.Symbol(), aon, legs) {
		m.logger.Debug("all-or-nothing order not affordable", zap.Int64("order_id", aon.ID))
		return false
	}

	for _, leg := range legs {
		bid, ask := orient(aon, leg.counter)
		if err := m.execute(book, bid, ask, leg.qty, leg.price, round, res); err != nil {
			panic(fmt.Errorf("all-or-nothing order %d: leg against order %d failed after planning: %w", aon.ID, leg.counter.ID, err))
		}
	}
	return true
}

// legsAffordable replays the planned legs against a scratch copy of the
// affected balances.
func (m *Matcher) legsAffordable(symbol string, aon *domain.Order, legs []allOrNothingLeg) bool {
	cash := make(map[int]int64)
	shares := make(map[int]int64)
	for _, leg := range legs {
		bid, ask := orient(aon, leg.counter)
		buyer := m.account(bid.AccountID)
		seller := m.account(ask.AccountID)
		cost, ok := domain.Cost(leg.qty, leg.price)
		if !ok || buyer.Cash+cash[buyer.ID] < cost {
			return false
		}
		if seller.Quantity(symbol)+shares[seller.ID] < leg.qty {
			return false
		}
		if buyer.ID == seller.ID {
			continue
		}
		if seller.Cash+cash[seller.ID] > math.MaxInt64-cost ||
			buyer.Quantity(symbol)+shares[buyer.ID] > math.MaxInt64-leg.qty {
			return false
		}
		cash[buyer.ID] -= cost
		cash[seller.ID] += cost
		shares[buyer.ID] += leg.qty
		shares[seller.ID] -= leg.qty
	}
	return true
}

// execute moves cash and shares for one match and updates both orders,
// the book, the instrument and the trade log. Nothing changes if the
// transfer is refused.
func (m *Matcher) execute(book *OrderBook, bid, ask *domain.Order, qty, price int64, round int, res *RoundResult) error {
	symbol := book.Symbol()
	buyer := m.account(bid.AccountID)
	seller := m.account(ask.AccountID)

	if err := domain.Transfer(buyer, seller, symbol, qty, price); err != nil {
		return err
	}

	bid.Fill(qty)
	ask.Fill(qty)
	if bid.Remaining == 0 {
		book.Remove(bid.ID)
	}
	if ask.Remaining == 0 {
		book.Remove(ask.ID)
	}

	if err := m.instruments.RecordTrade(symbol, price, round); err != nil {
		panic(fmt.Errorf("record trade on %s: %w", symbol, err))
	}

	trade := &domain.Trade{
		TradeID:     uuid.New().String(),
		Symbol:      symbol,
		BuyOrderID:  bid.ID,
		SellOrderID: ask.ID,
		BuyerID:     buyer.ID,
		SellerID:    seller.ID,
		Price:       price,
		Quantity:    qty,
		Round:       round,
	}
	m.trades.Append(trade)
	res.Trades = append(res.Trades, trade)
	res.Volume += qty

	m.metrics.TradeExecuted(qty)
	m.logger.Debug("trade executed",
		zap.String("trade_id", trade.TradeID),
		zap.String("symbol", symbol),
		zap.Int64("bid_id", bid.ID),
		zap.Int64("ask_id", ask.ID),
		zap.Int64("price", price),
		zap.Int64("quantity", qty),
		zap.Int("round", round),
	)
	return nil
}

// cancelIfInsolvent removes o from the book when its owner can no longer
// cover its full remaining quantity at its own limit.
func (m *Matcher) cancelIfInsolvent(book *OrderBook, o *domain.Order, res *RoundResult) bool {
	if !book.Contains(o.ID) {
		return false
	}
	acct := m.account(o.AccountID)
	var ok bool
	if o.IsBuy() {
		ok = acct.CanBuy(o.Symbol, o.Remaining, o.Price)
	} else {
		ok = acct.CanSell(o.Symbol, o.Remaining)
	}
	if ok {
		return false
	}

	book.Remove(o.ID)
	o.Status = domain.OrderStatusCancelled
	res.Cancelled = append(res.Cancelled, o)

	m.metrics.OrderCancelled()
	m.logger.Debug("order cancelled",
		zap.Int64("order_id", o.ID),
		zap.Int("account_id", o.AccountID),
		zap.String("reason", "insolvent"),
	)
	return true
}

// account resolves an order's account handle. Submit rejects unknown
// accounts and accounts are never deleted, so a miss is a broken invariant.
func (m *Matcher) account(id int) *domain.Account {
	acct, err := m.accounts.Get(id)
	if err != nil {
		panic(fmt.Errorf("resolve account of resting order: %w", err))
	}
	return acct
}

// clearingPrice is the limit of whichever order was submitted first.
func clearingPrice(a, b *domain.Order) int64 {
	if a.ID < b.ID {
		return a.Price
	}
	return b.Price
}

// orient returns the pair as (buy order, sell order).
func orient(a, b *domain.Order) (bid, ask *domain.Order) {
	if a.IsBuy() {
		return a, b
	}
	return b, a
}

// liveFrom filters a snapshot down to orders still on the book.
func liveFrom(book *OrderBook, orders []*domain.Order) []*domain.Order {
	live := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if book.Contains(o.ID) {
			live = append(live, o)
		}
	}
	return live
}
