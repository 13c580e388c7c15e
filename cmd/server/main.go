// Command server runs the matching engine behind a TCP gateway.
// Modeled on the teacher's cmd/main.go two-phase wiring (a forward
// reference between the server and the engine, resolved by
// constructing one before the other and patching the reference in
// after), generalized from one hardcoded engine.Engine/common.Equities
// pair onto a config-driven matcher.Matcher with any number of
// symbols.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"fenrir/internal/config"
	"fenrir/internal/matcher"
	"fenrir/internal/metrics"
	"fenrir/internal/model"
	"fenrir/internal/publisher"
	"fenrir/internal/sink"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (YAML/JSON/TOML); defaults are used if empty")
	flag.Parse()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Fan out every event to the gateway (to route reports back to
	// clients) and the broadcast sink, which feeds the debug event log
	// and the market data feed below.
	gw := publisher.NewGateway(cfg.ListenAddress, cfg.ListenPort)
	events := sink.NewBroadcastSink()
	defer events.Close()

	latency := metrics.NewLatencyRecorder()
	gw.AttachLatencyRecorder(latency)

	m := matcher.New(multiSink{gw, events})
	gw.AttachMatcher(m)

	if err := config.RegisterSymbols(m, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to register symbols")
	}

	go logBroadcastEvents(events)
	go logLatencySnapshots(ctx, latency)

	feed := publisher.NewMarketDataFeed(cfg.ListenAddress, cfg.FeedPort, events)
	go func() {
		if err := feed.Run(ctx); err != nil {
			log.Error().Err(err).Msg("market data feed exited with error")
		}
	}()

	log.Info().
		Str("address", cfg.ListenAddress).
		Int("port", cfg.ListenPort).
		Int("feed_port", cfg.FeedPort).
		Int("symbols", len(cfg.Symbols)).
		Msg("starting fenrir")

	if err := gw.Run(ctx); err != nil {
		log.Error().Err(err).Msg("gateway exited with error")
	}
	<-ctx.Done()
}

// multiSink fans every event out to several book.EventSink
// implementations synchronously, in order. BroadcastSink.OnOrder only
// enqueues onto a buffered channel and blocks only while that buffer
// is full; Gateway.OnOrder writes the report to the owning client's
// connection synchronously, so a slow client can stall the caller.
type multiSink struct {
	gateway   *publisher.Gateway
	broadcast *sink.BroadcastSink
}

func (m multiSink) OnOrder(bookID uint64, event model.OrderEvent) {
	m.gateway.OnOrder(bookID, event)
	m.broadcast.OnOrder(bookID, event)
}

func (m multiSink) OnTrade(bookID uint64, event model.TradeEvent) {
	m.gateway.OnTrade(bookID, event)
	m.broadcast.OnTrade(bookID, event)
}

// logLatencySnapshots periodically logs the gateway.handle_message
// latency distribution at info level, until ctx is cancelled.
func logLatencySnapshots(ctx context.Context, latency *metrics.LatencyRecorder) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := latency.Snapshot("gateway.handle_message")
			if snap.Count == 0 {
				continue
			}
			log.Info().
				Int64("count", snap.Count).
				Int64("p50_ns", snap.P50).
				Int64("p99_ns", snap.P99).
				Int64("p999_ns", snap.P999).
				Msg("gateway latency snapshot")
		}
	}
}

func logBroadcastEvents(events *sink.BroadcastSink) {
	ch, unsubscribe := events.Subscribe()
	defer unsubscribe()
	for e := range ch {
		log.Debug().
			Uint64("book_id", e.BookID).
			Interface("kind", e.Kind).
			Msg("event")
	}
}
