package book

import (
	"container/list"

	"fenrir/internal/model"
)

// Order is a resting order in a price level's FIFO queue. It carries
// its own back-reference into that queue (elem) so cancel/amend/fill
// can unlink it in O(1) without walking the level.
//
// The original C/Rust implementation this engine is modeled on stores
// this back-reference as a raw pointer inside an arena of orders, with
// the OrderIndex holding the arena slot. Go has no use for a manual
// arena here: the garbage collector already gives every Order a stable
// address for as long as something references it, so the handle is
// just the *list.Element itself.
type Order struct {
	ID            uint64
	Side          model.Side
	Price         uint64
	Size          uint64
	CumFilledSize uint64

	level *PriceLevel
	elem  *list.Element
}

// Level returns the price level this order currently rests on.
func (o *Order) Level() *PriceLevel { return o.level }
