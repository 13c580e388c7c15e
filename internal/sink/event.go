// Package sink collects concrete book.EventSink implementations: a
// synchronous logging sink, a lock-free SPSC ring buffer sink, a
// fan-out broadcast sink, and a batch-draining sequenced sink. The
// ring, broadcast and batch sinks wrap the same Event envelope so
// downstream consumers (wire encoders, metrics, log lines) see one
// shape regardless of which sink produced it; the logging sink writes
// each event's fields straight to the log. Grounded on original_source/matcher/src/handler's
// four Handler implementations (stdout/rtrb/broadcast/disruptor),
// reworked from Rust enum dispatch into a single Go struct with a Kind
// tag, since Go has no tagged-union sum type to mirror Event directly.
package sink

import (
	"time"

	"fenrir/internal/model"
)

// Kind distinguishes an order lifecycle event from a trade event
// inside the shared Event envelope.
type Kind uint8

const (
	KindOrder Kind = iota
	KindTrade
)

// Event is the envelope every sink in this package pushes downstream.
// BookID identifies the symbol the event belongs to; TradeID is only
// populated for KindTrade (each sink owns its own IDGenerator for
// these, so ids are unique per consumer pipeline, not globally).
type Event struct {
	Kind      Kind
	BookID    uint64
	TradeID   uint64
	Timestamp time.Time
	Order     model.OrderEvent
	Trade     model.TradeEvent
}
