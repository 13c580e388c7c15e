package model

// OrderEvent reports a change to an order's lifecycle. It is pushed
// synchronously into an EventSink from inside a Book mutation.
type OrderEvent struct {
	Status        OrderStatus
	OrderID       uint64
	FilledSize    uint64
	CumFilledSize uint64
	RemainingSize uint64
	Price         uint64
	Side          Side
	RejectReason  RejectReason
}

// TradeEvent reports a single match between a taker and a resting
// maker order. Price and size always refer to the maker's price and
// the quantity exchanged in this particular fill.
type TradeEvent struct {
	Size          uint64
	Price         uint64
	TakerSide     Side
	BuyerOrderID  uint64
	SellerOrderID uint64
}
