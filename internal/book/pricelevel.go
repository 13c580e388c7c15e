package book

import "container/list"

// PriceLevel holds the FIFO queue of resting orders at one price,
// plus cached aggregate statistics. Mirrors the teacher's
// engine.PriceLevel (price + orders slice), but backs the queue with
// a container/list so Unlink is O(1) given the order's hook instead of
// requiring a slice reslice/scan.
type PriceLevel struct {
	Price  uint64
	orders *list.List

	volume uint64
	count  int
}

func newPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		orders: list.New(),
	}
}

// Volume is the sum of the remaining size of every resting order on
// this level.
func (l *PriceLevel) Volume() uint64 { return l.volume }

// Count is the number of resting orders on this level.
func (l *PriceLevel) Count() int { return l.count }

// IsEmpty reports whether the level holds no resting orders.
func (l *PriceLevel) IsEmpty() bool { return l.count == 0 }

// Head returns the order at the front of the FIFO queue, or nil if the
// level is empty.
func (l *PriceLevel) Head() *Order {
	front := l.orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*Order)
}

// Orders returns the resting orders in FIFO (queue) order. Used by
// snapshot/debug reads and tests; not on the matching hot path.
func (l *PriceLevel) Orders() []*Order {
	out := make([]*Order, 0, l.count)
	for e := l.orders.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Order))
	}
	return out
}

// append adds order to the tail of the queue, updating aggregates and
// the order's back-reference hook.
func (l *PriceLevel) append(o *Order) {
	o.level = l
	o.elem = l.orders.PushBack(o)
	l.volume += o.Size
	l.count++
}

// unlink removes order from the queue in O(1) using its stored hook.
// Aggregates are updated to reflect the order's size at the time of
// removal; callers that already mutated o.Size before unlinking (e.g.
// a full fill reducing Size to 0) must account for that themselves via
// adjustVolume.
func (l *PriceLevel) unlink(o *Order) {
	l.orders.Remove(o.elem)
	o.elem = nil
	o.level = nil
	l.volume -= o.Size
	l.count--
}

// adjustVolume applies a delta (negative on fills, positive on
// amend-up) to the level's cached volume. Must be called atomically
// with any change to a resting order's Size so the invariant
// volume == sum(order.Size) never drifts.
func (l *PriceLevel) adjustVolume(delta int64) {
	if delta < 0 {
		l.volume -= uint64(-delta)
	} else {
		l.volume += uint64(delta)
	}
}

// moveToBack relocates order to the tail of the queue without
// touching aggregates, used by amend-up to forfeit time priority.
func (l *PriceLevel) moveToBack(o *Order) {
	l.orders.MoveToBack(o.elem)
}
