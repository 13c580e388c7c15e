// Package book implements one symbol's matching core: two SideBooks
// (bids descending, asks ascending), an OrderIndex for O(1)
// cancel/amend, and the limit/execute/cancel/amend_size algorithm.
// Modeled on the teacher's engine.OrderBook (PlaceOrder/Match/
// handleLimit/handleMarket), generalized to the execute/limit split
// contract spec.md §4.3 describes instead of the teacher's
// always-matches-on-insert behavior.
package book

import "fenrir/internal/model"

// EventSink is the one-way channel a Book pushes lifecycle and trade
// events into, synchronously, from inside its own mutations. Matches
// spec.md §4.5: implementations must never call back into the Book
// and must not block the matching hot path.
type EventSink interface {
	OnOrder(bookID uint64, event model.OrderEvent)
	OnTrade(bookID uint64, event model.TradeEvent)
}

// Book is one symbol's matching state.
type Book struct {
	ID   uint64
	Bids *SideBook
	Asks *SideBook

	idx  *orderIndex
	sink EventSink
}

// New constructs an empty Book for the given book/symbol id, wired to
// sink. id is the integer used to tag every event this Book emits.
func New(id uint64, sink EventSink) *Book {
	return &Book{
		ID:   id,
		Bids: NewSideBook(model.Bid),
		Asks: NewSideBook(model.Ask),
		idx:  newOrderIndex(),
		sink: sink,
	}
}

func (b *Book) sideBook(side model.Side) *SideBook {
	if side == model.Bid {
		return b.Bids
	}
	return b.Asks
}

// Best returns the best resting price level on side, or nil if empty.
func (b *Book) Best(side model.Side) *PriceLevel {
	return b.sideBook(side).Best()
}

// TopN returns up to n levels on side in walk order.
func (b *Book) TopN(side model.Side, n int) []*PriceLevel {
	return b.sideBook(side).TopN(n)
}

// OrderCount is the number of resting orders across both sides.
func (b *Book) OrderCount() int {
	return b.idx.len()
}

// Limit adds a resting order to the book. See spec.md §4.3: no
// matching is performed here, the caller must route marketable orders
// through Execute first.
func (b *Book) Limit(orderID uint64, side model.Side, price, size uint64) error {
	return b.LimitWithFill(orderID, side, price, size, 0)
}

// LimitWithFill is Limit for the cross-then-rest path: cumFilled
// carries forward however much of the order was already filled as a
// taker before its residual rests, per
// original_source/matcher/src/lib.rs's order branch, which constructs
// the rested order with `cum_filled_size: size - remaining_size`
// rather than resetting it to zero.
func (b *Book) LimitWithFill(orderID uint64, side model.Side, price, size, cumFilled uint64) error {
	if price == 0 || size == 0 {
		return model.ErrInvalidOrderSize
	}
	if _, exists := b.idx.get(orderID); exists {
		return model.ErrOrderExists
	}

	sb := b.sideBook(side)
	lvl := sb.GetOrInsert(price)
	o := &Order{ID: orderID, Side: side, Price: price, Size: size, CumFilledSize: cumFilled}
	lvl.append(o)
	sb.incOrders()
	b.idx.insert(o)

	b.sink.OnOrder(b.ID, model.OrderEvent{
		Status:        model.Created,
		OrderID:       orderID,
		RemainingSize: size,
		Price:         price,
		Side:          side,
		RejectReason:  model.NoError,
	})
	return nil
}

// Execute consumes liquidity from the side opposite to the taker,
// walking best-outward in strict price-time priority. totalSize is
// the taker's original requested size, carried through for interface
// parity with the reference implementation; executeSize is the
// quantity actually eligible to cross right now (the caller may pass
// less than totalSize, e.g. capped to the opposing best level's
// volume, when composing a cross-then-rest limit order). Returns the
// portion of executeSize left unconsumed.
func (b *Book) Execute(orderID uint64, side model.Side, totalSize, executeSize uint64, isMarket bool) uint64 {
	_ = totalSize
	opposite := b.sideBook(side.Inverse())
	hungry := executeSize
	takerFilled := uint64(0)

	for hungry > 0 {
		lvl := opposite.Best()
		if lvl == nil {
			break
		}
		maker := lvl.Head()
		if maker == nil {
			break
		}

		fillQty := min(maker.Size, hungry)
		maker.Size -= fillQty
		maker.CumFilledSize += fillQty
		lvl.adjustVolume(-int64(fillQty))
		hungry -= fillQty
		takerFilled += fillQty

		buyerID, sellerID := maker.ID, orderID
		if side == model.Bid {
			buyerID, sellerID = orderID, maker.ID
		}
		b.sink.OnTrade(b.ID, model.TradeEvent{
			Size:          fillQty,
			Price:         lvl.Price,
			TakerSide:     side,
			BuyerOrderID:  buyerID,
			SellerOrderID: sellerID,
		})

		if maker.Size == 0 {
			lvl.unlink(maker)
			b.idx.remove(maker.ID)
			opposite.decOrders()
			b.sink.OnOrder(b.ID, model.OrderEvent{
				Status:        model.Filled,
				OrderID:       maker.ID,
				FilledSize:    fillQty,
				CumFilledSize: maker.CumFilledSize,
				RemainingSize: 0,
				Price:         lvl.Price,
				Side:          maker.Side,
				RejectReason:  model.NoError,
			})
			opposite.RemoveIfEmpty(lvl)
		} else {
			b.sink.OnOrder(b.ID, model.OrderEvent{
				Status:        model.PartiallyFilled,
				OrderID:       maker.ID,
				FilledSize:    fillQty,
				CumFilledSize: maker.CumFilledSize,
				RemainingSize: maker.Size,
				Price:         lvl.Price,
				Side:          maker.Side,
				RejectReason:  model.NoError,
			})
		}
	}

	remaining := hungry
	if isMarket {
		switch {
		case takerFilled == 0:
			b.sink.OnOrder(b.ID, model.OrderEvent{
				Status:        model.Rejected,
				OrderID:       orderID,
				RemainingSize: remaining,
				Side:          side,
				RejectReason:  model.NoLiquidity,
			})
		case remaining == 0:
			b.sink.OnOrder(b.ID, model.OrderEvent{
				Status:        model.Filled,
				OrderID:       orderID,
				FilledSize:    takerFilled,
				CumFilledSize: takerFilled,
				RemainingSize: 0,
				Side:          side,
				RejectReason:  model.NoError,
			})
		default:
			b.sink.OnOrder(b.ID, model.OrderEvent{
				Status:        model.PartiallyFilledCancelled,
				OrderID:       orderID,
				FilledSize:    takerFilled,
				CumFilledSize: takerFilled,
				RemainingSize: remaining,
				Side:          side,
				RejectReason:  model.NoError,
			})
		}
	}
	return remaining
}

// Cancel removes a resting order by id.
func (b *Book) Cancel(orderID uint64) error {
	o, ok := b.idx.get(orderID)
	if !ok {
		return model.ErrOrderNotFound
	}

	lvl := o.level
	sb := b.sideBook(o.Side)
	lvl.unlink(o)
	b.idx.remove(orderID)
	sb.decOrders()

	status := model.Cancelled
	if o.CumFilledSize > 0 {
		status = model.PartiallyFilledCancelled
	}
	b.sink.OnOrder(b.ID, model.OrderEvent{
		Status:        status,
		OrderID:       orderID,
		CumFilledSize: o.CumFilledSize,
		RemainingSize: 0,
		Price:         o.Price,
		Side:          o.Side,
		RejectReason:  model.NoError,
	})
	sb.RemoveIfEmpty(lvl)
	return nil
}

// AmendSize changes a resting order's size. Reducing keeps the order's
// queue position (no time-priority loss); increasing past the
// original size moves it to the tail of its level. No event is
// emitted: the status enum spec.md §6 defines has no "Amended" state,
// unlike Limit (Created) and Cancel (Cancelled).
func (b *Book) AmendSize(orderID uint64, newSize uint64) error {
	o, ok := b.idx.get(orderID)
	if !ok {
		return model.ErrOrderNotFound
	}
	if newSize == 0 || newSize <= o.CumFilledSize {
		return model.ErrInvalidOrderSize
	}

	oldSize := o.Size
	o.Size = newSize
	o.level.adjustVolume(int64(newSize) - int64(oldSize))
	if newSize > oldSize {
		o.level.moveToBack(o)
	}
	return nil
}
