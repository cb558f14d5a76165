package domain

// Trade represents a matched execution between a buy and a sell order.
type Trade struct {
	TradeID     string
	Symbol      string
	BuyOrderID  int64
	SellOrderID int64
	BuyerID     int
	SellerID    int
	Price       int64
	Quantity    int64
	Round       int
}

// Value returns the cash that changed hands.
func (t *Trade) Value() int64 {
	return t.Price * t.Quantity
}
