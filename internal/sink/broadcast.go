package sink

import (
	"github.com/rs/zerolog/log"

	"fenrir/internal/model"
)

// subscriberBuffer bounds how many unconsumed events a single slow
// subscriber may queue before BroadcastSink starts dropping for it
// specifically, so one stalled reader can never back up another.
const subscriberBuffer = 4096

// BroadcastSink fans every event out to any number of subscriber
// channels, each fed independently and non-blockingly. Grounded on
// original_source/matcher/src/handler/broadcast.rs's BroadcastHandler,
// which wraps a single tokio::sync::broadcast::Sender; Go has no
// broadcast channel in the standard library, so this keeps the same
// fan-out contract (every subscriber sees every event, a full
// subscriber loses events rather than stalling the sender) using one
// buffered channel per subscriber instead.
type BroadcastSink struct {
	tradeIDs model.IDGenerator

	subscribe   chan chan Event
	unsubscribe chan chan Event
	events      chan Event
	done        chan struct{}
}

// NewBroadcastSink starts the fan-out goroutine and returns a sink
// ready to accept subscribers.
func NewBroadcastSink() *BroadcastSink {
	b := &BroadcastSink{
		subscribe:   make(chan chan Event),
		unsubscribe: make(chan chan Event),
		events:      make(chan Event, subscriberBuffer),
		done:        make(chan struct{}),
	}
	go b.run()
	return b
}

// Subscribe registers a new listener and returns the channel it will
// receive events on, along with an unsubscribe function that stops
// delivery and closes the channel.
func (b *BroadcastSink) Subscribe() (ch <-chan Event, unsubscribe func()) {
	sub := make(chan Event, subscriberBuffer)
	b.subscribe <- sub
	return sub, func() { b.unsubscribe <- sub }
}

func (b *BroadcastSink) run() {
	subscribers := make(map[chan Event]struct{})
	defer close(b.done)
	for {
		select {
		case ch, ok := <-b.subscribe:
			if !ok {
				return
			}
			subscribers[ch] = struct{}{}
		case ch := <-b.unsubscribe:
			if _, ok := subscribers[ch]; ok {
				delete(subscribers, ch)
				close(ch)
			}
		case e, ok := <-b.events:
			if !ok {
				for ch := range subscribers {
					close(ch)
				}
				return
			}
			for ch := range subscribers {
				select {
				case ch <- e:
				default:
					log.Warn().Uint64("book_id", e.BookID).Msg("broadcast subscriber full, dropping event")
				}
			}
		}
	}
}

func (b *BroadcastSink) OnOrder(bookID uint64, event model.OrderEvent) {
	b.events <- Event{Kind: KindOrder, BookID: bookID, Order: event}
}

func (b *BroadcastSink) OnTrade(bookID uint64, event model.TradeEvent) {
	b.events <- Event{Kind: KindTrade, BookID: bookID, TradeID: b.tradeIDs.NextID(), Trade: event}
}

// Close stops the fan-out goroutine and closes every remaining
// subscriber channel.
func (b *BroadcastSink) Close() {
	close(b.events)
	<-b.done
}
