package bench_test

import (
	"strings"
	"testing"

	"fenrir/internal/bench"
	"fenrir/internal/matcher"
	"fenrir/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	e, err := bench.ParseLine([]byte(`{"event":"order_created","data":{"id":1,"price":6280505000000,"amount":100000000,"order_type":1}}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.ID)
	assert.Equal(t, model.Ask, e.Side)
	assert.Equal(t, float64(6280505000000), e.Price)
}

func TestReplay_CreateDeleteChange(t *testing.T) {
	m := matcher.New(nil)
	require.NoError(t, m.AddSymbol("BTC-USD", matcher.SymbolMetadata{PricePrecision: 2, SizePrecision: 4}))

	input := strings.Join([]string{
		`{"event":"order_created","data":{"id":1,"price":6280505000000,"amount":100000000,"order_type":0}}`,
		`{"event":"order_changed","data":{"id":1,"price":6280505000000,"amount":200000000,"order_type":0}}`,
		`{"event":"order_deleted","data":{"id":1,"price":6280505000000,"amount":200000000,"order_type":0}}`,
	}, "\n")

	n, err := bench.Replay(strings.NewReader(input), m, "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	b, ok := m.Book("BTC-USD")
	require.True(t, ok)
	assert.Equal(t, 0, b.OrderCount(), "the order should have been cancelled by the final line")
}

func TestReplay_UnknownDeleteIDErrors(t *testing.T) {
	m := matcher.New(nil)
	require.NoError(t, m.AddSymbol("BTC-USD", matcher.SymbolMetadata{PricePrecision: 2, SizePrecision: 4}))

	input := `{"event":"order_deleted","data":{"id":99,"price":0,"amount":0,"order_type":0}}`
	_, err := bench.Replay(strings.NewReader(input), m, "BTC-USD")
	assert.Error(t, err)
}
