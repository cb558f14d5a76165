package engine

import (
	"sort"
	"sync"

	"github.com/efreitasn/roundexchange/internal/domain"
	"github.com/google/btree"
)

// OrderBookEntry represents a single order resting on the book. Seq is the
// book-local insertion sequence used to keep equal-priced entries in
// arrival order.
type OrderBookEntry struct {
	Price int64
	Seq   uint64
	Order *domain.Order
}

// PriceLevel represents an aggregated price level in the order book.
type PriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// bidLess orders the bid side by price descending, then insertion
// ascending. Min() returns the best bid.
func bidLess(a, b OrderBookEntry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.Seq < b.Seq
}

// askLess orders the ask side by price ascending, then insertion
// ascending. Min() returns the best ask.
func askLess(a, b OrderBookEntry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Seq < b.Seq
}

// OrderBook maintains the bid and ask sides for a single instrument using
// B-trees with a secondary index for O(log n) removal by order id.
type OrderBook struct {
	symbol string
	mu     sync.RWMutex
	bids   *btree.BTreeG[OrderBookEntry]
	asks   *btree.BTreeG[OrderBookEntry]
	index  map[int64]OrderBookEntry // order id → entry
	seq    uint64
}

// NewOrderBook creates an order book for the given symbol.
func NewOrderBook(symbol string) *OrderBook {
	const degree = 32
	return &OrderBook{
		symbol: symbol,
		bids:   btree.NewG[OrderBookEntry](degree, bidLess),
		asks:   btree.NewG[OrderBookEntry](degree, askLess),
		index:  make(map[int64]OrderBookEntry),
	}
}

// Symbol returns the instrument this book belongs to.
func (ob *OrderBook) Symbol() string {
	return ob.symbol
}

// Lock acquires the write lock on the order book.
func (ob *OrderBook) Lock() {
	ob.mu.Lock()
}

// Unlock releases the write lock on the order book.
func (ob *OrderBook) Unlock() {
	ob.mu.Unlock()
}

// RLock acquires the read lock on the order book.
func (ob *OrderBook) RLock() {
	ob.mu.RLock()
}

// RUnlock releases the read lock on the order book.
func (ob *OrderBook) RUnlock() {
	ob.mu.RUnlock()
}

// Insert places an order on its side of the book after every resting
// order with the same price. Inserting an order that is already on the
// book is a no-op.
func (ob *OrderBook) Insert(order *domain.Order) {
	if _, ok := ob.index[order.ID]; ok {
		return
	}
	ob.seq++
	entry := OrderBookEntry{Price: order.Price, Seq: ob.seq, Order: order}
	if order.IsBuy() {
		ob.bids.ReplaceOrInsert(entry)
	} else {
		ob.asks.ReplaceOrInsert(entry)
	}
	ob.index[order.ID] = entry
}

// Remove deletes an order from the book by id. Removing an order that is
// not on the book is a no-op; it reports whether anything was removed.
func (ob *OrderBook) Remove(orderID int64) bool {
	entry, ok := ob.index[orderID]
	if !ok {
		return false
	}
	delete(ob.index, orderID)
	if entry.Order.IsBuy() {
		ob.bids.Delete(entry)
	} else {
		ob.asks.Delete(entry)
	}
	return true
}

// Contains reports whether the order is resting on the book.
func (ob *OrderBook) Contains(orderID int64) bool {
	_, ok := ob.index[orderID]
	return ok
}

// BestBid returns the highest-priority bid (highest price, earliest arrival).
func (ob *OrderBook) BestBid() (OrderBookEntry, bool) {
	return ob.bids.Min()
}

// BestAsk returns the highest-priority ask (lowest price, earliest arrival).
func (ob *OrderBook) BestAsk() (OrderBookEntry, bool) {
	return ob.asks.Min()
}

// Bids returns a snapshot of the bid side in priority order. Callers may
// remove orders from the book while ranging over the snapshot.
func (ob *OrderBook) Bids() []*domain.Order {
	return snapshot(ob.WalkBids, ob.bids.Len())
}

// Asks returns a snapshot of the ask side in priority order.
func (ob *OrderBook) Asks() []*domain.Order {
	return snapshot(ob.WalkAsks, ob.asks.Len())
}

// walkFunc visits one side of the book in priority order.
type walkFunc func(fn func(OrderBookEntry) bool)

func snapshot(walk walkFunc, n int) []*domain.Order {
	orders := make([]*domain.Order, 0, n)
	walk(func(entry OrderBookEntry) bool {
		orders = append(orders, entry.Order)
		return true
	})
	return orders
}

// TopBids returns up to n aggregated price levels from the bid side,
// ordered by price descending.
func (ob *OrderBook) TopBids(n int) []PriceLevel {
	return topLevels(ob.WalkBids, n)
}

// TopAsks returns up to n aggregated price levels from the ask side,
// ordered by price ascending.
func (ob *OrderBook) TopAsks(n int) []PriceLevel {
	return topLevels(ob.WalkAsks, n)
}

// topLevels aggregates one side into at most n price levels.
func topLevels(walk walkFunc, n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	walk(func(entry OrderBookEntry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price == entry.Price {
			levels[len(levels)-1].TotalQuantity += entry.Order.Remaining
			levels[len(levels)-1].OrderCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:         entry.Price,
			TotalQuantity: entry.Order.Remaining,
			OrderCount:    1,
		})
		return true
	})
	return levels
}

// WalkAsks iterates asks in order (lowest price first). The callback
// returns true to continue, false to stop.
func (ob *OrderBook) WalkAsks(fn func(OrderBookEntry) bool) {
	ob.asks.Ascend(fn)
}

// WalkBids iterates bids in order (highest price first). The callback
// returns true to continue, false to stop.
func (ob *OrderBook) WalkBids(fn func(OrderBookEntry) bool) {
	ob.bids.Ascend(fn)
}

// BidCount returns the number of individual bid orders on the book.
func (ob *OrderBook) BidCount() int {
	return ob.bids.Len()
}

// AskCount returns the number of individual ask orders on the book.
func (ob *OrderBook) AskCount() int {
	return ob.asks.Len()
}

// BookManager is a thread-safe map of symbol → OrderBook.
type BookManager struct {
	mu    sync.RWMutex
	books map[string]*OrderBook
}

// NewBookManager creates a new BookManager.
func NewBookManager() *BookManager {
	return &BookManager{
		books: make(map[string]*OrderBook),
	}
}

// GetOrCreate returns the order book for the given symbol, creating
// one if it doesn't already exist.
func (bm *BookManager) GetOrCreate(symbol string) *OrderBook {
	bm.mu.RLock()
	book, ok := bm.books[symbol]
	bm.mu.RUnlock()
	if ok {
		return book
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	// Double-check after acquiring write lock.
	if book, ok = bm.books[symbol]; ok {
		return book
	}
	book = NewOrderBook(symbol)
	bm.books[symbol] = book
	return book
}

// Get returns the book for symbol without creating one.
func (bm *BookManager) Get(symbol string) (*OrderBook, bool) {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	book, ok := bm.books[symbol]
	return book, ok
}

// Books returns every book ordered by symbol.
func (bm *BookManager) Books() []*OrderBook {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	books := make([]*OrderBook, 0, len(bm.books))
	for _, b := range bm.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].symbol < books[j].symbol })
	return books
}
