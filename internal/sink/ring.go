package sink

import (
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"fenrir/internal/model"
)

// ringSize must be a power of two so the index mask below is a cheap
// bitwise AND instead of a modulo. Grounded on
// _examples/ejyy-femto_go/ringbuffer.go's RingBuffer[T], whose
// RING_SIZE/RING_MASK constants this mirrors.
const (
	ringSize  = 1 << 16
	ringMask  = ringSize - 1
	cacheLine = 64
)

// RingSink is a single-producer/single-consumer ring buffer sink: the
// matching goroutine (the one producer) pushes events from inside
// Book mutations and a background goroutine (the one consumer) drains
// them into a downstream handler. Unlike
// _examples/ejyy-femto_go/ringbuffer.go's Push, which busy-spins the
// producer when the ring is full, this sink drops and logs instead —
// an EventSink must never block the matching hot path (spec.md §4.5),
// and a full ring means the consumer is falling behind, not that the
// producer should stall waiting for it.
//
// Field order and the _pad fields keep writePos and readPos on
// separate cache lines to avoid false sharing between producer and
// consumer cores, the same layout as the ring buffer this is modeled
// on, combined with the rtrb.rs Handler's push-and-drop semantics
// (original_source/matcher/src/handler/rtrb.rs).
type RingSink struct {
	buffer [ringSize]Event

	_pad1    [cacheLine - 8]byte
	writePos uint64
	_pad2    [cacheLine - 8]byte
	readPos  uint64
	_pad3    [cacheLine - 8]byte

	tradeIDs model.IDGenerator
	dropped  uint64

	stop chan struct{}
	done chan struct{}
}

// NewRingSink allocates a ring and starts its consumer goroutine,
// which calls handler for every event in arrival order until Stop is
// called.
func NewRingSink(handler func(Event)) *RingSink {
	r := &RingSink{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go r.consume(handler)
	return r
}

// Dropped reports how many events have been discarded because the
// consumer could not keep up.
func (r *RingSink) Dropped() uint64 {
	return atomic.LoadUint64(&r.dropped)
}

func (r *RingSink) push(e Event) {
	write := atomic.LoadUint64(&r.writePos)
	read := atomic.LoadUint64(&r.readPos)
	if write-read >= ringSize {
		atomic.AddUint64(&r.dropped, 1)
		log.Warn().Uint64("book_id", e.BookID).Msg("ring sink full, dropping event")
		return
	}
	r.buffer[write&ringMask] = e
	atomic.StoreUint64(&r.writePos, write+1)
}

func (r *RingSink) OnOrder(bookID uint64, event model.OrderEvent) {
	r.push(Event{Kind: KindOrder, BookID: bookID, Order: event})
}

func (r *RingSink) OnTrade(bookID uint64, event model.TradeEvent) {
	r.push(Event{Kind: KindTrade, BookID: bookID, TradeID: r.tradeIDs.NextID(), Trade: event})
}

// consume drains the ring into handler until Stop is called, yielding
// the scheduler instead of busy-spinning when the ring is empty so an
// idle consumer doesn't pin a core.
func (r *RingSink) consume(handler func(Event)) {
	defer close(r.done)
	for {
		select {
		case <-r.stop:
			r.drain(handler)
			return
		default:
		}

		read := atomic.LoadUint64(&r.readPos)
		write := atomic.LoadUint64(&r.writePos)
		if read == write {
			runtime.Gosched()
			continue
		}
		handler(r.buffer[read&ringMask])
		atomic.StoreUint64(&r.readPos, read+1)
	}
}

func (r *RingSink) drain(handler func(Event)) {
	for {
		read := atomic.LoadUint64(&r.readPos)
		write := atomic.LoadUint64(&r.writePos)
		if read == write {
			return
		}
		handler(r.buffer[read&ringMask])
		atomic.StoreUint64(&r.readPos, read+1)
	}
}

// Stop signals the consumer to drain any remaining events and exit,
// blocking until it has.
func (r *RingSink) Stop() {
	close(r.stop)
	<-r.done
}
