package sink_test

import (
	"testing"
	"time"

	"fenrir/internal/model"
	"fenrir/internal/sink"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdoutSink_DoesNotPanic(t *testing.T) {
	s := sink.NewStdoutSink()
	s.OnOrder(1, model.OrderEvent{Status: model.Created, OrderID: 1, Side: model.Bid})
	s.OnTrade(1, model.TradeEvent{Size: 1, Price: 100, TakerSide: model.Ask})
}

func TestRingSink_DeliversInOrder(t *testing.T) {
	received := make(chan sink.Event, 16)
	r := sink.NewRingSink(func(e sink.Event) { received <- e })
	defer r.Stop()

	for i := uint64(1); i <= 5; i++ {
		r.OnOrder(1, model.OrderEvent{OrderID: i})
	}

	for i := uint64(1); i <= 5; i++ {
		select {
		case e := <-received:
			assert.Equal(t, i, e.Order.OrderID)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for ring sink delivery")
		}
	}
}

func TestRingSink_AssignsTradeIDs(t *testing.T) {
	received := make(chan sink.Event, 4)
	r := sink.NewRingSink(func(e sink.Event) { received <- e })
	defer r.Stop()

	r.OnTrade(1, model.TradeEvent{Size: 1})
	r.OnTrade(1, model.TradeEvent{Size: 1})

	first := <-received
	second := <-received
	assert.Equal(t, uint64(1), first.TradeID)
	assert.Equal(t, uint64(2), second.TradeID)
}

func TestBroadcastSink_FansOutToAllSubscribers(t *testing.T) {
	b := sink.NewBroadcastSink()
	defer b.Close()

	chA, unsubA := b.Subscribe()
	defer unsubA()
	chB, unsubB := b.Subscribe()
	defer unsubB()

	b.OnOrder(7, model.OrderEvent{OrderID: 42})

	for _, ch := range []<-chan sink.Event{chA, chB} {
		select {
		case e := <-ch:
			assert.Equal(t, uint64(42), e.Order.OrderID)
			assert.Equal(t, uint64(7), e.BookID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive broadcast event")
		}
	}
}

func TestBroadcastSink_UnsubscribeClosesChannel(t *testing.T) {
	b := sink.NewBroadcastSink()
	defer b.Close()

	ch, unsub := b.Subscribe()
	unsub()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after unsubscribe")
	}
}

func TestBatchSink_DrainReturnsAllSincePreviousDrain(t *testing.T) {
	b := sink.NewBatchSink()

	b.OnOrder(1, model.OrderEvent{OrderID: 1})
	b.OnOrder(1, model.OrderEvent{OrderID: 2})
	b.OnTrade(1, model.TradeEvent{Size: 3})

	batch := b.Drain()
	require.Len(t, batch, 3)
	assert.Equal(t, uint64(1), batch[0].Sequence)
	assert.Equal(t, uint64(2), batch[1].Sequence)
	assert.Equal(t, uint64(3), batch[2].Sequence)
	assert.Equal(t, uint64(1), batch[2].Event.TradeID)

	assert.Empty(t, b.Drain(), "a second drain with nothing new should be empty")

	b.OnOrder(1, model.OrderEvent{OrderID: 3})
	batch = b.Drain()
	require.Len(t, batch, 1)
	assert.Equal(t, uint64(4), batch[0].Sequence, "sequence keeps advancing across drains")
}
