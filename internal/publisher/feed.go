package publisher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/sink"
	"fenrir/internal/wire"
)

// MarketDataFeed is a TCP broadcast server over a sink.BroadcastSink:
// every subscriber connection receives every trade as a
// wire.TradeMessage frame, in order. Grounded on Gateway's own
// accept-loop shape (same listener/tomb/session bookkeeping), but
// one-directional and without a per-client owner map, since a market
// data feed has no notion of "whose" trade a fill belongs to.
type MarketDataFeed struct {
	address string
	port    int
	events  *sink.BroadcastSink

	cancel context.CancelFunc

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewMarketDataFeed returns a feed that broadcasts trades observed on
// events to every connection it accepts on address:port.
func NewMarketDataFeed(address string, port int, events *sink.BroadcastSink) *MarketDataFeed {
	return &MarketDataFeed{
		address: address,
		port:    port,
		events:  events,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Run accepts subscriber connections and streams trades to them until
// ctx is cancelled.
func (f *MarketDataFeed) Run(ctx context.Context) error {
	ctx, f.cancel = context.WithCancel(ctx)
	defer f.cancel()
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", f.address, f.port))
	if err != nil {
		return fmt.Errorf("starting market data listener: %w", err)
	}
	defer func() {
		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Error().Err(err).Msg("closing market data listener")
		}
	}()
	// Unblock Accept once ctx is done.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	t.Go(func() error {
		return f.publishLoop(t)
	})

	log.Info().Str("address", listener.Addr().String()).Msg("market data feed listening")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Msg("error accepting market data subscriber")
				continue
			}
			log.Info().Str("address", conn.RemoteAddr().String()).Msg("market data subscriber connected")
			f.addConn(conn)
		}
	}
}

func (f *MarketDataFeed) publishLoop(t *tomb.Tomb) error {
	ch, unsubscribe := f.events.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-t.Dying():
			return nil
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			if e.Kind != sink.KindTrade {
				continue
			}
			frame := wire.Encode(wire.TradeMessage{
				TradeID:  e.TradeID,
				SymbolID: e.BookID,
				Trade:    e.Trade,
				Time:     time.Now(),
			})
			f.broadcast(frame)
		}
	}
}

func (f *MarketDataFeed) addConn(conn net.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conns[conn] = struct{}{}
}

// broadcast writes frame to every subscriber, dropping (and closing)
// any connection whose write fails rather than letting one slow
// subscriber stall the feed for the rest.
func (f *MarketDataFeed) broadcast(frame []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		if _, err := conn.Write(frame); err != nil {
			log.Warn().Err(err).Str("address", conn.RemoteAddr().String()).Msg("dropping market data subscriber")
			conn.Close()
			delete(f.conns, conn)
		}
	}
}
