// Package bench reads the NDJSON regression-test input format spec.md
// §6 defines (one order_created/order_deleted/order_changed event per
// line, float price/amount scaled by 10^8) and replays it against a
// matcher.Matcher, grounded on the teacher's engine+net packages for
// how scaled values flow into an order placement, since nothing in
// this codebase's pack ships an NDJSON bench harness directly.
package bench

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"fenrir/internal/matcher"
	"fenrir/internal/model"
)

// eventKind mirrors the "event" discriminator field on each NDJSON
// line.
type eventKind string

const (
	orderCreated eventKind = "order_created"
	orderDeleted eventKind = "order_deleted"
	orderChanged eventKind = "order_changed"
)

// scaleDivisor is the fixed 10^8 scale factor spec.md's benchmark
// format applies to every price/amount field, independent of a
// symbol's own registered PricePrecision/SizePrecision — the bench
// format is a single hardcoded precision across all symbols.
const scaleDivisor = 1e8

type rawEvent struct {
	Event string  `json:"event"`
	Data  rawData `json:"data"`
}

type rawData struct {
	ID        uint64  `json:"id"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	OrderType int     `json:"order_type"`
}

// Event is one parsed benchmark line, with its side already resolved
// from the 0/1 order_type discriminator.
type Event struct {
	Kind   eventKind
	ID     uint64
	Price  float64
	Amount float64
	Side   model.Side
}

// ParseLine decodes a single NDJSON line into an Event.
func ParseLine(line []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(line, &raw); err != nil {
		return Event{}, fmt.Errorf("bench: decoding line: %w", err)
	}

	side := model.Bid
	if raw.Data.OrderType == 1 {
		side = model.Ask
	}

	return Event{
		Kind:   eventKind(raw.Event),
		ID:     raw.Data.ID,
		Price:  raw.Data.Price,
		Amount: raw.Data.Amount,
		Side:   side,
	}, nil
}

// Replay reads NDJSON lines from r and applies each one to symbol on
// m, in order. order_changed is applied as an AmendSize to the scaled
// amount; order_deleted as a Cancel; order_created as a resting Limit
// order placed through Matcher.Order at the event's own price (so a
// crossing order_created still matches, matching the live engine's
// ordinary order-entry semantics). Returns the count of lines applied.
func Replay(r io.Reader, m *matcher.Matcher, symbol string) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	applied := 0
	ids := make(map[uint64]uint64) // benchmark id -> assigned order id

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		event, err := ParseLine(line)
		if err != nil {
			return applied, err
		}

		switch event.Kind {
		case orderCreated:
			orderID, err := m.Order(symbol, matcher.Order{
				Price: event.Price / scaleDivisor,
				Size:  event.Amount / scaleDivisor,
				Side:  event.Side,
			})
			if err != nil {
				return applied, fmt.Errorf("bench: order_created id=%d: %w", event.ID, err)
			}
			ids[event.ID] = orderID
		case orderDeleted:
			orderID, ok := ids[event.ID]
			if !ok {
				return applied, fmt.Errorf("bench: order_deleted unknown id=%d", event.ID)
			}
			if err := m.Cancel(symbol, orderID); err != nil {
				return applied, fmt.Errorf("bench: order_deleted id=%d: %w", event.ID, err)
			}
			delete(ids, event.ID)
		case orderChanged:
			orderID, ok := ids[event.ID]
			if !ok {
				return applied, fmt.Errorf("bench: order_changed unknown id=%d", event.ID)
			}
			metadata, ok := m.Metadata(symbol)
			if !ok {
				return applied, fmt.Errorf("%w: %s", model.ErrSymbolNotFound, symbol)
			}
			newSize := matcher.ScaleFloat(event.Amount/scaleDivisor, metadata.SizePrecision)
			if err := m.AmendSize(symbol, orderID, newSize); err != nil {
				return applied, fmt.Errorf("bench: order_changed id=%d: %w", event.ID, err)
			}
		default:
			return applied, fmt.Errorf("bench: unknown event kind %q", event.Kind)
		}
		applied++
	}
	if err := scanner.Err(); err != nil {
		return applied, fmt.Errorf("bench: scanning input: %w", err)
	}
	return applied, nil
}
