package wire_test

import (
	"testing"
	"time"

	"fenrir/internal/model"
	"fenrir/internal/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeRoundTrip(t *testing.T) {
	msg := wire.TradeMessage{
		TradeID:  99,
		SymbolID: 1,
		Trade: model.TradeEvent{
			Price:         6280505,
			Size:          1,
			TakerSide:     model.Ask,
			BuyerOrderID:  1,
			SellerOrderID: 2,
		},
		Time: time.Unix(1_700_000_000, 123456789).UTC(),
	}

	encoded := wire.Encode(msg)
	assert.Len(t, encoded, 8+57)

	decoded, err := wire.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, msg.TradeID, decoded.TradeID)
	assert.Equal(t, msg.SymbolID, decoded.SymbolID)
	assert.Equal(t, msg.Trade, decoded.Trade)
	assert.True(t, msg.Time.Equal(decoded.Time))

	reEncoded := wire.Encode(decoded)
	assert.Equal(t, encoded, reEncoded, "decode then re-encode must be byte-identical")
}

func TestTradeDecodeRejectsShortBuffer(t *testing.T) {
	_, err := wire.Decode(make([]byte, 10))
	assert.ErrorIs(t, err, wire.ErrMessageTooShort)
}

func TestTradeDecodeRejectsWrongTemplate(t *testing.T) {
	buf := wire.Encode(wire.TradeMessage{})
	buf[2] = 0xFF
	buf[3] = 0xFF
	_, err := wire.Decode(buf)
	assert.ErrorIs(t, err, wire.ErrUnexpectedTemplate)
}
