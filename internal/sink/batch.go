package sink

import (
	"sync"

	"fenrir/internal/model"
)

// BatchSink accumulates events under a sequence number and lets a
// consumer drain everything published since its last read in one
// batch. The end of a batch is the end of the slice Drain returns;
// events carry no separate end-of-batch flag. Grounded on
// original_source/matcher/src/handler/disruptor.rs's DisruptorHandler,
// which publishes into a disruptor-rs ring and calls a handler with
// (event, sequence, end_of_batch); this keeps that publish/drain-by-
// sequence contract without depending on an actual disruptor library,
// using a mutex-protected slice instead since this sink targets
// periodic batch consumers (e.g. a snapshot writer) rather than a
// busy-polling single consumer.
type BatchSink struct {
	mu       sync.Mutex
	tradeIDs model.IDGenerator
	seq      uint64
	pending  []SequencedEvent
}

// SequencedEvent pairs an Event with its publish sequence number.
type SequencedEvent struct {
	Sequence uint64
	Event    Event
}

// NewBatchSink returns a sink ready to accumulate events.
func NewBatchSink() *BatchSink {
	return &BatchSink{}
}

func (b *BatchSink) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.pending = append(b.pending, SequencedEvent{Sequence: b.seq, Event: e})
}

func (b *BatchSink) OnOrder(bookID uint64, event model.OrderEvent) {
	b.publish(Event{Kind: KindOrder, BookID: bookID, Order: event})
}

func (b *BatchSink) OnTrade(bookID uint64, event model.TradeEvent) {
	b.publish(Event{Kind: KindTrade, BookID: bookID, TradeID: b.tradeIDs.NextID(), Trade: event})
}

// Drain returns every event published since the last Drain call, in
// publish order, and forgets them. Call this from a single consumer;
// concurrent Drain calls would split one logical batch across two
// callers.
func (b *BatchSink) Drain() []SequencedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return nil
	}
	batch := b.pending
	b.pending = nil
	return batch
}
