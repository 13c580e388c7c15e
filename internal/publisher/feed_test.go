package publisher_test

import (
	"context"
	"net"
	"testing"
	"time"

	"fenrir/internal/model"
	"fenrir/internal/publisher"
	"fenrir/internal/sink"
	"fenrir/internal/wire"

	"github.com/stretchr/testify/require"
)

func TestMarketDataFeed_BroadcastsTrades(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().(*net.TCPAddr)
	listener.Close()

	events := sink.NewBroadcastSink()
	defer events.Close()

	feed := publisher.NewMarketDataFeed("127.0.0.1", addr.Port, events)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

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

	time.Sleep(50 * time.Millisecond) // let the listener register the connection

	events.OnTrade(1, model.TradeEvent{
		Price:         12345,
		Size:          10,
		TakerSide:     model.Bid,
		BuyerOrderID:  1,
		SellerOrderID: 2,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 65)
	_, err = conn.Read(buf)
	require.NoError(t, err)

	msg, err := wire.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(1), msg.SymbolID)
	require.Equal(t, uint64(12345), msg.Trade.Price)
}
