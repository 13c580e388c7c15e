package matcher_test

import (
	"testing"

	"fenrir/internal/matcher"
	"fenrir/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	orders []model.OrderEvent
	trades []model.TradeEvent
}

func (s *recordingSink) OnOrder(_ uint64, e model.OrderEvent) { s.orders = append(s.orders, e) }
func (s *recordingSink) OnTrade(_ uint64, e model.TradeEvent) { s.trades = append(s.trades, e) }

func newTestMatcher(t *testing.T) (*matcher.Matcher, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	m := matcher.New(sink)
	require.NoError(t, m.AddSymbol("BTC-USD", matcher.SymbolMetadata{
		PricePrecision: 2,
		SizePrecision:  4,
		DisplayName:    "Bitcoin / US Dollar",
	}))
	return m, sink
}

func TestMatcher_AddSymbolRejectsDuplicate(t *testing.T) {
	m, _ := newTestMatcher(t)
	err := m.AddSymbol("BTC-USD", matcher.SymbolMetadata{})
	assert.ErrorIs(t, err, model.ErrSymbolExists)
}

func TestMatcher_OrderUnknownSymbol(t *testing.T) {
	m, _ := newTestMatcher(t)
	_, err := m.Order("ETH-USD", matcher.Order{Price: 1, Size: 1, Side: model.Bid})
	assert.ErrorIs(t, err, model.ErrSymbolNotFound)
}

// A resting limit bid at 100.00, then a crossing limit ask at the same
// price sweeps it and rests any residual, exercising the equality-only
// crossing check (spec.md §9 OPEN QUESTION 1).
func TestMatcher_LimitOrderCrosses(t *testing.T) {
	m, sink := newTestMatcher(t)

	bidID, err := m.Order("BTC-USD", matcher.Order{Price: 100.00, Size: 1.0000, Side: model.Bid})
	require.NoError(t, err)

	askID, err := m.Order("BTC-USD", matcher.Order{Price: 100.00, Size: 1.5000, Side: model.Ask})
	require.NoError(t, err)

	require.Len(t, sink.trades, 1)
	trade := sink.trades[0]
	assert.Equal(t, uint64(10000), trade.Price)
	assert.Equal(t, uint64(10000), trade.Size)
	assert.Equal(t, bidID, trade.BuyerOrderID)
	assert.Equal(t, askID, trade.SellerOrderID)

	b, ok := m.Book("BTC-USD")
	require.True(t, ok)
	require.NotNil(t, b.Best(model.Ask))
	assert.Equal(t, uint64(5000), b.Best(model.Ask).Volume(), "residual 0.5 should rest")
	assert.Nil(t, b.Best(model.Bid))
}

// The residual an order rests after partially crossing carries forward
// its cum_filled_size from the taker sweep, so a later Fill of that
// residual reports the order's true total filled size rather than
// resetting to just the residual's own fill.
func TestMatcher_CrossThenRestCarriesCumFilledSize(t *testing.T) {
	m, sink := newTestMatcher(t)

	_, err := m.Order("BTC-USD", matcher.Order{Price: 100.00, Size: 1.0000, Side: model.Bid})
	require.NoError(t, err)

	askID, err := m.Order("BTC-USD", matcher.Order{Price: 100.00, Size: 1.5000, Side: model.Ask})
	require.NoError(t, err)

	_, err = m.Order("BTC-USD", matcher.Order{Price: 100.00, Size: 0.5000, Side: model.Bid})
	require.NoError(t, err)

	var fill model.OrderEvent
	found := false
	for _, e := range sink.orders {
		if e.OrderID == askID && e.Status == model.Filled {
			fill = e
			found = true
		}
	}
	require.True(t, found, "the rested residual should eventually report Filled")
	assert.Equal(t, uint64(15000), fill.CumFilledSize, "cum_filled_size must include the original crossing fill, not just the residual")
}

// A limit order one tick away from the resting best must NOT cross,
// even though it is marketable in the inequality sense — only an exact
// price match triggers Execute in this engine.
func TestMatcher_LimitOrderOneTickAwayDoesNotCross(t *testing.T) {
	m, sink := newTestMatcher(t)

	_, err := m.Order("BTC-USD", matcher.Order{Price: 100.00, Side: model.Bid, Size: 1.0})
	require.NoError(t, err)

	_, err = m.Order("BTC-USD", matcher.Order{Price: 99.99, Side: model.Ask, Size: 1.0})
	require.NoError(t, err)

	assert.Empty(t, sink.trades, "a crossing-but-not-equal price must not match in this engine")

	b, ok := m.Book("BTC-USD")
	require.True(t, ok)
	require.NotNil(t, b.Best(model.Bid))
	require.NotNil(t, b.Best(model.Ask))
}

// A market order (price == 0) against an empty book rejects with no
// trade, and against a larger resting ask fills in full in one trade.
func TestMatcher_MarketOrder(t *testing.T) {
	m, sink := newTestMatcher(t)

	_, err := m.Order("BTC-USD", matcher.Order{Price: 0, Size: 1.0, Side: model.Bid})
	require.NoError(t, err)
	require.Len(t, sink.orders, 1)
	assert.Equal(t, model.Rejected, sink.orders[0].Status)

	_, err = m.Order("BTC-USD", matcher.Order{Price: 50.00, Size: 2.0, Side: model.Ask})
	require.NoError(t, err)

	_, err = m.Order("BTC-USD", matcher.Order{Price: 0, Size: 1.0, Side: model.Bid})
	require.NoError(t, err)
	require.Len(t, sink.trades, 1)
	assert.Equal(t, uint64(10000), sink.trades[0].Size)
}

func TestMatcher_CancelAndAmend(t *testing.T) {
	m, _ := newTestMatcher(t)

	id, err := m.Order("BTC-USD", matcher.Order{Price: 100.00, Size: 1.0, Side: model.Bid})
	require.NoError(t, err)

	require.NoError(t, m.AmendSize("BTC-USD", id, 20000))
	require.NoError(t, m.Cancel("BTC-USD", id))
	assert.ErrorIs(t, m.Cancel("BTC-USD", id), model.ErrOrderNotFound)

	assert.ErrorIs(t, m.Cancel("ETH-USD", id), model.ErrSymbolNotFound)
	assert.ErrorIs(t, m.AmendSize("ETH-USD", id, 1), model.ErrSymbolNotFound)
}

// scaleFloat truncates rather than rounds: at 4dp size precision,
// 0.00001 scales to 0.1 ticks, which truncates to 0 and is rejected as
// an invalid size rather than rounding up to 1 (spec.md §9 OPEN
// QUESTION 2).
func TestMatcher_ScalingTruncates(t *testing.T) {
	m, _ := newTestMatcher(t)

	_, err := m.Order("BTC-USD", matcher.Order{Price: 100.00, Size: 0.00001, Side: model.Bid})
	assert.ErrorIs(t, err, model.ErrInvalidOrderSize)

	_, err = m.Order("BTC-USD", matcher.Order{Price: 100.00, Size: 0.00019, Side: model.Bid})
	require.NoError(t, err)
	b, ok := m.Book("BTC-USD")
	require.True(t, ok)
	require.NotNil(t, b.Best(model.Bid))
	assert.Equal(t, uint64(1), b.Best(model.Bid).Volume(), "0.00019 at 4dp truncates to 1 tick, not 2")
}
