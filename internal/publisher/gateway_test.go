package publisher_test

import (
	"context"
	"net"
	"testing"
	"time"

	"fenrir/internal/matcher"
	"fenrir/internal/model"
	"fenrir/internal/publisher"

	"github.com/stretchr/testify/require"
)

func TestGateway_AcceptsAndParsesNewOrder(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().(*net.TCPAddr)
	listener.Close()

	gw := publisher.NewGateway("127.0.0.1", addr.Port)
	m := matcher.New(gw)
	gw.AttachMatcher(m)
	require.NoError(t, m.AddSymbol("BTC-USD", matcher.SymbolMetadata{PricePrecision: 2, SizePrecision: 4}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gw.Run(ctx)

	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", addr.String())
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	frame := publisher.EncodeNewOrder(publisher.NewOrderRequest{
		Symbol:   "BTC-USD",
		Side:     model.Bid,
		Price:    100.00,
		Size:     1.0,
		Username: "alice",
	})
	_, err = conn.Write(frame)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	b, ok := m.Book("BTC-USD")
	require.True(t, ok)
	require.NotNil(t, b.Best(model.Bid))
}

func TestParseMessage_RoundTrip(t *testing.T) {
	frame := publisher.EncodeCancelOrder(publisher.CancelOrderRequest{Symbol: "ETH-USD", OrderID: 7})
	parsed, err := publisher.ParseMessage(frame)
	require.NoError(t, err)
	req, ok := parsed.(publisher.CancelOrderRequest)
	require.True(t, ok)
	require.Equal(t, "ETH-USD", req.Symbol)
	require.Equal(t, uint64(7), req.OrderID)
}
