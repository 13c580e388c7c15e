// Package matcher is the single-threaded front door: it owns the
// SymbolRegistry, the order-id generator, and the active EventSink,
// scales float input into integer ticks/lots per symbol, and
// dispatches to the right Book. Modeled on original_source's
// matcher/src/lib.rs (Matcher::order/cancel/amend_size) with the
// teacher's engine.Engine as the Go-idiom skeleton for the type.
package matcher

import (
	"fmt"
	"math"

	"fenrir/internal/book"
	"fenrir/internal/model"
)

// Order is the caller-facing request to Matcher.Order: float price
// and size, scaled internally using the target symbol's precision.
type Order struct {
	Price float64
	Size  float64
	Side  model.Side
}

// Matcher dispatches order/cancel/amend requests to the Book owned by
// the named symbol, after float->tick/lot scaling. Exactly one thread
// may call into a Matcher at a time; shard symbols across separate
// Matchers on separate goroutines to use more cores.
type Matcher struct {
	symbols    *symbolTable
	orderIDGen model.IDGenerator
	sink       book.EventSink
}

// New constructs a Matcher that will attach sink to every Book it
// creates via AddSymbol.
func New(sink book.EventSink) *Matcher {
	return &Matcher{
		symbols: newSymbolTable(),
		sink:    sink,
	}
}

// AddSymbol creates a fresh Book for symbol and attaches the Matcher's
// EventSink to it. Replacing an existing symbol is not supported.
func (m *Matcher) AddSymbol(symbol string, metadata SymbolMetadata) error {
	if metadata.PricePrecision > 9 || metadata.SizePrecision > 9 {
		return fmt.Errorf("precision must be between 0 and 9")
	}
	metadata.Symbol = symbol

	ordinal := len(m.symbols.entries)
	entry := &symbolEntry{
		book:     book.New(uint64(ordinal), m.sink),
		metadata: metadata,
	}
	if ok := m.symbols.add(symbol, entry); !ok {
		return fmt.Errorf("%w: %s", model.ErrSymbolExists, symbol)
	}
	return nil
}

// Metadata returns the registered precision/display metadata for
// symbol, for collaborators (a gateway, a config reloader) that need
// to scale a raw float themselves before calling AmendSize.
func (m *Matcher) Metadata(symbol string) (SymbolMetadata, bool) {
	entry, ok := m.symbols.get(symbol)
	if !ok {
		return SymbolMetadata{}, false
	}
	return entry.metadata, true
}

// ScaleFloat exposes the same truncating float->ticks conversion Order
// uses internally, for collaborators that must pre-scale a value (e.g.
// AmendSize's new size) before calling into the Matcher.
func ScaleFloat(value float64, precision uint8) uint64 {
	return scaleFloat(value, precision)
}

// Book returns the underlying Book for symbol, for read-only access
// (best/top_n) by collaborators such as a publisher or metrics
// exporter. Returns false if the symbol is unknown.
func (m *Matcher) Book(symbol string) (*book.Book, bool) {
	entry, ok := m.symbols.get(symbol)
	if !ok {
		return nil, false
	}
	return entry.book, true
}

// Order scales the incoming float order and dispatches it to the
// named symbol's Book, assigning it a new monotone order id.
//
// Per spec.md §9 OPEN QUESTION 1, the crossing check this repository
// performs compares the incoming price for *equality* with the
// opposite side's best, not full marketability (best <= price for a
// bid taker, best >= price for an ask taker) — this is deliberately
// preserved from original_source/matcher/src/lib.rs::order, which
// performs the same equality check, not a guessed "corrected" one.
func (m *Matcher) Order(symbol string, order Order) (uint64, error) {
	entry, ok := m.symbols.get(symbol)
	if !ok {
		return 0, fmt.Errorf("%w: %s", model.ErrSymbolNotFound, symbol)
	}

	orderID := m.orderIDGen.NextID()
	size := scaleFloat(order.Size, entry.metadata.SizePrecision)

	if order.Price == 0.0 {
		entry.book.Execute(orderID, order.Side, size, size, true)
		return orderID, nil
	}

	price := scaleFloat(order.Price, entry.metadata.PricePrecision)
	best := entry.book.Best(order.Side.Inverse())
	if best != nil && best.Price == price {
		executeSize := min(best.Volume(), size)
		unexecuted := entry.book.Execute(orderID, order.Side, size, executeSize, false)
		residual := size - executeSize + unexecuted
		if residual > 0 {
			cumFilled := size - residual
			if err := entry.book.LimitWithFill(orderID, order.Side, price, residual, cumFilled); err != nil {
				return orderID, err
			}
		}
		return orderID, nil
	}

	if err := entry.book.Limit(orderID, order.Side, price, size); err != nil {
		return orderID, err
	}
	return orderID, nil
}

// Cancel removes a resting order on symbol.
func (m *Matcher) Cancel(symbol string, orderID uint64) error {
	entry, ok := m.symbols.get(symbol)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrSymbolNotFound, symbol)
	}
	return entry.book.Cancel(orderID)
}

// AmendSize changes a resting order's size on symbol. size is an
// already-scaled lot count, not raw float input — amend requests in
// this engine operate directly on the resting order's integer size,
// matching orderbook_amend_size's u64 parameter in original_source.
func (m *Matcher) AmendSize(symbol string, orderID, size uint64) error {
	entry, ok := m.symbols.get(symbol)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrSymbolNotFound, symbol)
	}
	return entry.book.AmendSize(orderID, size)
}

// scaleFloat converts a float price/size into integer ticks/lots.
// Per spec.md §9 OPEN QUESTION 2, this truncates via a direct cast
// rather than rounding half-to-even, matching
// original_source/matcher/src/lib.rs::scale_float exactly.
func scaleFloat(value float64, precision uint8) uint64 {
	return uint64(value * math.Pow10(int(precision)))
}
