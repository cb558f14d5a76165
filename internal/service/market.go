package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/roundexchange/internal/domain"
	"github.com/efreitasn/roundexchange/internal/engine"
	"github.com/efreitasn/roundexchange/internal/history"
	"github.com/efreitasn/roundexchange/internal/store"
)

// PriceResponse describes an instrument's latest price and averages.
type PriceResponse struct {
	Symbol         string          `json:"symbol"`
	LastPrice      int64           `json:"last_price"`
	LastTradeRound int             `json:"last_trade_round"`
	SMA5           decimal.Decimal `json:"sma5"`
	SMA10          decimal.Decimal `json:"sma10"`
	SignalsReady   bool            `json:"signals_ready"` // false until the first end-of-round evaluation
	VWAP           decimal.Decimal `json:"vwap"`          // over the trailing window; zero without trades
	WindowRounds   int             `json:"window_rounds"`
	TradesInWindow int             `json:"trades_in_window"`
	TotalTrades    int             `json:"total_trades"`
}

// BookPriceLevel represents an aggregated price level in the book response.
type BookPriceLevel struct {
	Price         int64 `json:"price"`
	TotalQuantity int64 `json:"total_quantity"`
	OrderCount    int   `json:"order_count"`
}

// BookResponse is a depth snapshot of one instrument's book.
type BookResponse struct {
	Symbol    string           `json:"symbol"`
	Bids      []BookPriceLevel `json:"bids"`
	Asks      []BookPriceLevel `json:"asks"`
	BidOrders int              `json:"bid_orders"` // resting orders, all levels
	AskOrders int              `json:"ask_orders"`
	Spread    *int64           `json:"spread"` // nil if either side empty
}

// TotalsResponse sums cash and shares over every account.
type TotalsResponse struct {
	Accounts int              `json:"accounts"`
	Cash     int64            `json:"cash"`
	Shares   map[string]int64 `json:"shares"`
}

// MarketService answers read-only questions about instruments and books.
type MarketService struct {
	instruments *domain.InstrumentRegistry
	accounts    *store.AccountStore
	trades      *store.TradeStore
	books       *engine.BookManager
	history     *history.Tracker
	vwapWindow  int
}

// NewMarketService creates a MarketService. vwapWindow is the number of
// trailing rounds the volume-weighted average covers.
func NewMarketService(
	instruments *domain.InstrumentRegistry,
	accounts *store.AccountStore,
	trades *store.TradeStore,
	books *engine.BookManager,
	history *history.Tracker,
	vwapWindow int,
) *MarketService {
	return &MarketService{
		instruments: instruments,
		accounts:    accounts,
		trades:      trades,
		books:       books,
		history:     history,
		vwapWindow:  vwapWindow,
	}
}

// GetPrice returns the last traded price of symbol with its moving
// averages and a volume-weighted average over the trailing rounds ending
// at the last trade.
func (s *MarketService) GetPrice(symbol string) (*PriceResponse, error) {
	inst, err := s.instruments.Get(symbol)
	if err != nil {
		return nil, err
	}

	resp := &PriceResponse{
		Symbol:         inst.Symbol,
		LastPrice:      inst.LastPrice,
		LastTradeRound: inst.LastTradeRound,
		WindowRounds:   s.vwapWindow,
		VWAP:           decimal.Zero,
	}
	if s.history != nil {
		resp.SMA5, resp.SMA10, resp.SignalsReady = s.history.Signals(symbol)
	}

	resp.TotalTrades = s.trades.Count(symbol)
	last, ok := s.trades.Last(symbol)
	if !ok {
		return resp, nil
	}

	window := s.trades.Since(symbol, last.Round-s.vwapWindow+1)
	resp.TradesInWindow = len(window)
	// Summed as decimals: a window of large trades can exceed int64.
	notional, qty := decimal.Zero, decimal.Zero
	for _, t := range window {
		notional = notional.Add(decimal.NewFromInt(t.Value()))
		qty = qty.Add(decimal.NewFromInt(t.Quantity))
	}
	if qty.IsPositive() {
		resp.VWAP = notional.Div(qty)
	}
	return resp, nil
}

// GetBook returns the top depth price levels of symbol's book.
func (s *MarketService) GetBook(symbol string, depth int) (*BookResponse, error) {
	if !s.instruments.Exists(symbol) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInstrumentNotFound, symbol)
	}
	if depth < 1 || depth > 50 {
		return nil, &domain.ValidationError{
			Message: "depth must be between 1 and 50",
		}
	}

	resp := &BookResponse{
		Symbol: symbol,
		Bids:   []BookPriceLevel{},
		Asks:   []BookPriceLevel{},
	}
	book, ok := s.books.Get(symbol)
	if !ok {
		return resp, nil
	}
	book.RLock()
	defer book.RUnlock()

	resp.Bids = toLevels(book.TopBids(depth))
	resp.Asks = toLevels(book.TopAsks(depth))
	resp.BidOrders = book.BidCount()
	resp.AskOrders = book.AskCount()
	if len(resp.Bids) > 0 && len(resp.Asks) > 0 {
		spread := resp.Asks[0].Price - resp.Bids[0].Price
		resp.Spread = &spread
	}
	return resp, nil
}

func toLevels(levels []engine.PriceLevel) []BookPriceLevel {
	out := make([]BookPriceLevel, len(levels))
	for i, pl := range levels {
		out[i] = BookPriceLevel{
			Price:         pl.Price,
			TotalQuantity: pl.TotalQuantity,
			OrderCount:    pl.OrderCount,
		}
	}
	return out
}

// Totals sums cash and holdings across all accounts. Executed trades never
// change either total.
func (s *MarketService) Totals() *TotalsResponse {
	resp := &TotalsResponse{Shares: make(map[string]int64)}
	for _, a := range s.accounts.All() {
		resp.Accounts++
		resp.Cash += a.Cash
		for symbol, qty := range a.Holdings {
			resp.Shares[symbol] += qty
		}
	}
	return resp
}

// Symbols lists every instrument symbol in order.
func (s *MarketService) Symbols() []string {
	all := s.instruments.All()
	symbols := make([]string, len(all))
	for i, inst := range all {
		symbols[i] = inst.Symbol
	}
	return symbols
}
