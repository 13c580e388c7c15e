package sink

import (
	"github.com/rs/zerolog/log"

	"fenrir/internal/model"
)

// StdoutSink logs every order and trade event through the package
// logger as it arrives, synchronously, on the matching goroutine.
// Grounded on original_source/matcher/src/handler/stdout.rs's
// StdOutHandler, which counts and prints every event it receives; this
// port swaps println! for zerolog's structured event builder, the
// logging idiom the rest of this repository already uses.
type StdoutSink struct {
	tradeIDs model.IDGenerator
	counter  uint64
}

// NewStdoutSink returns a sink ready to log immediately.
func NewStdoutSink() *StdoutSink {
	return &StdoutSink{}
}

func (s *StdoutSink) OnOrder(bookID uint64, event model.OrderEvent) {
	s.counter++
	log.Info().
		Uint64("seq", s.counter).
		Uint64("book_id", bookID).
		Str("status", event.Status.String()).
		Uint64("order_id", event.OrderID).
		Str("side", event.Side.String()).
		Uint64("price", event.Price).
		Uint64("remaining_size", event.RemainingSize).
		Uint64("filled_size", event.FilledSize).
		Msg("order event")
}

func (s *StdoutSink) OnTrade(bookID uint64, event model.TradeEvent) {
	s.counter++
	tradeID := s.tradeIDs.NextID()
	log.Info().
		Uint64("seq", s.counter).
		Uint64("book_id", bookID).
		Uint64("trade_id", tradeID).
		Uint64("price", event.Price).
		Uint64("size", event.Size).
		Str("taker_side", event.TakerSide.String()).
		Uint64("buyer_order_id", event.BuyerOrderID).
		Uint64("seller_order_id", event.SellerOrderID).
		Msg("trade event")
}
