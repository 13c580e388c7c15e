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

	"fenrir/internal/matcher"
	"fenrir/internal/metrics"
	"fenrir/internal/model"
)

const (
	maxRecvSize        = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = 5 * time.Second
)

var (
	ErrImproperConversion = errors.New("publisher: improper task conversion")
	ErrClientNotFound     = errors.New("publisher: client not found")
)

// clientSession tracks one connected client's connection, so an
// OnOrder callback can find the right connection to write a report
// to. Which orders a client owns is tracked in Gateway.owners.
type clientSession struct {
	conn net.Conn
}

// clientMessage links a parsed frame to the connection it arrived on.
type clientMessage struct {
	clientAddr string
	message    Message
}

// Gateway is a TCP front door over a matcher.Matcher: it accepts
// connections, parses NewOrder/CancelOrder/AmendOrder frames, and
// writes order lifecycle reports back to the owning client; errors
// from handling a request are logged, not sent to the client. Grounded
// on the teacher's internal/net.Server (same accept-loop, worker-pool,
// session-map, tomb-supervised shape), rewired from the teacher's
// single-asset-class Engine onto matcher.Matcher and from its
// AssetType-keyed session-by-username model onto an order-id-keyed
// owner map, since this gateway must route reports for orders it
// placed on behalf of many symbols rather than one engine per client.
type Gateway struct {
	address string
	port    int
	matcher *matcher.Matcher
	pool    *WorkerPool
	latency *metrics.LatencyRecorder

	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]clientSession
	owners   map[uint64]string // order id -> client address

	clientMessages chan clientMessage
}

// NewGateway returns a Gateway listening on address:port. Call
// AttachMatcher before Run with the Matcher this Gateway was passed to
// as an EventSink (mirroring the teacher's cmd/main.go two-phase
// wiring of net.Server and engine.Engine, since the Gateway must exist
// before it can be handed to matcher.New as a book.EventSink, and the
// Matcher must exist before the Gateway can dispatch into it).
func NewGateway(address string, port int) *Gateway {
	return &Gateway{
		address:        address,
		port:           port,
		pool:           NewWorkerPool(defaultNWorkers),
		sessions:       make(map[string]clientSession),
		owners:         make(map[uint64]string),
		clientMessages: make(chan clientMessage, 1),
	}
}

// AttachMatcher wires the Matcher this Gateway dispatches requests
// into. Must be called before Run.
func (g *Gateway) AttachMatcher(m *matcher.Matcher) {
	g.matcher = m
}

// AttachLatencyRecorder wires an optional LatencyRecorder that times
// every handled client message under the "gateway.handle_message"
// operation. A nil Gateway.latency (the zero value) disables timing
// entirely rather than requiring a no-op recorder.
func (g *Gateway) AttachLatencyRecorder(r *metrics.LatencyRecorder) {
	g.latency = r
}

// Shutdown cancels the Gateway's Run context.
func (g *Gateway) Shutdown() {
	log.Info().Msg("gateway shutting down")
	if g.cancel != nil {
		g.cancel()
	}
}

// Run accepts connections until ctx is cancelled or Shutdown is
// called.
func (g *Gateway) Run(ctx context.Context) error {
	defer g.Shutdown()

	ctx, g.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", g.address, g.port))
	if err != nil {
		return fmt.Errorf("starting listener: %w", err)
	}
	defer func() {
		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Error().Err(err).Msg("closing listener")
		}
	}()
	// Unblock Accept once ctx is done.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	t.Go(func() error {
		g.pool.Setup(t, g.handleConnection)
		return nil
	})
	t.Go(func() error {
		return g.sessionLoop(t)
	})

	log.Info().Str("address", listener.Addr().String()).Msg("gateway listening")

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
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			log.Info().Str("address", conn.RemoteAddr().String()).Msg("client connected")
			g.addSession(conn)
			g.pool.AddTask(conn)
		}
	}
}

func (g *Gateway) sessionLoop(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case msg := <-g.clientMessages:
			var err error
			if g.latency != nil {
				err = metrics.Observe(g.latency, "gateway.handle_message", func() error {
					return g.handleMessage(msg)
				})
			} else {
				err = g.handleMessage(msg)
			}
			if err != nil {
				log.Error().Err(err).Str("client", msg.clientAddr).Msg("error handling message")
			}
		}
	}
}

func (g *Gateway) handleMessage(msg clientMessage) error {
	switch m := msg.message.(type) {
	case NewOrderRequest:
		orderID, err := g.matcher.Order(m.Symbol, matcher.Order{Price: m.Price, Size: m.Size, Side: m.Side})
		if err != nil {
			return err
		}
		g.claimOrder(orderID, msg.clientAddr)
		return nil
	case CancelOrderRequest:
		return g.matcher.Cancel(m.Symbol, m.OrderID)
	case AmendOrderRequest:
		metadata, ok := g.matcher.Metadata(m.Symbol)
		if !ok {
			return model.ErrSymbolNotFound
		}
		ticks := matcher.ScaleFloat(m.NewSize, metadata.SizePrecision)
		return g.matcher.AmendSize(m.Symbol, m.OrderID, ticks)
	case nil:
		return nil
	default:
		return ErrInvalidMessageType
	}
}

// handleConnection is a short-lived worker task: read one frame,
// forward it, requeue the connection for its next frame.
func (g *Gateway) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	select {
	case <-t.Dying():
		return conn.Close()
	default:
	}

	if err := conn.SetReadDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("failed setting deadline")
		return nil
	}

	buf := make([]byte, maxRecvSize)
	n, err := conn.Read(buf)
	if err != nil {
		log.Info().Err(err).Str("address", conn.RemoteAddr().String()).Msg("connection closed")
		g.removeSession(conn.RemoteAddr().String())
		return conn.Close()
	}

	message, err := ParseMessage(buf[:n])
	if err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing message")
		g.pool.AddTask(conn)
		return nil
	}

	g.clientMessages <- clientMessage{clientAddr: conn.RemoteAddr().String(), message: message}
	g.pool.AddTask(conn)
	return nil
}

// OnOrder implements book.EventSink, writing an order lifecycle report
// to the client that placed it, if still connected.
func (g *Gateway) OnOrder(bookID uint64, event model.OrderEvent) {
	addr, ok := g.ownerOf(event.OrderID)
	if !ok {
		return
	}
	if event.Status == model.Cancelled || event.Status == model.Filled ||
		event.Status == model.Rejected || event.Status == model.PartiallyFilledCancelled {
		g.releaseOrder(event.OrderID)
	}
	g.writeReport(addr, fmt.Sprintf("order book=%d id=%d status=%s remaining=%d\n", bookID, event.OrderID, event.Status, event.RemainingSize))
}

// OnTrade implements book.EventSink. Trade reports aren't addressed to
// a single client (either side, or neither, may still be connected);
// this gateway logs them and leaves per-client trade confirmation to
// the order-id-keyed OnOrder path. The book fires a Filled or
// PartiallyFilled event for the maker of every trade; a taker gets
// only the terminal event of a market order, or a Created event for
// the rested residual of a crossing limit order.
func (g *Gateway) OnTrade(bookID uint64, event model.TradeEvent) {
	log.Info().
		Uint64("book_id", bookID).
		Uint64("price", event.Price).
		Uint64("size", event.Size).
		Msg("trade")
}

func (g *Gateway) writeReport(addr, report string) {
	g.mu.Lock()
	session, ok := g.sessions[addr]
	g.mu.Unlock()
	if !ok {
		return
	}
	if _, err := session.conn.Write([]byte(report)); err != nil {
		log.Error().Err(err).Str("address", addr).Msg("failed to write report")
	}
}

func (g *Gateway) addSession(conn net.Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[conn.RemoteAddr().String()] = clientSession{conn: conn}
}

func (g *Gateway) removeSession(addr string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, addr)
}

func (g *Gateway) claimOrder(orderID uint64, addr string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.owners[orderID] = addr
}

func (g *Gateway) releaseOrder(orderID uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.owners, orderID)
}

func (g *Gateway) ownerOf(orderID uint64) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	addr, ok := g.owners[orderID]
	return addr, ok
}
