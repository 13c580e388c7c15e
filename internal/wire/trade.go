// Package wire implements the fixed-layout binary trade codec
// consumed at the edge of the system (publisher/gateway), never by
// the matching core itself. Grounded on
// original_source/sbe/src/trade_codec.rs's TradeEncoder/TradeDecoder
// field offsets (an SBE schema with template_id 201, schema_id 2,
// version 0), ported into the teacher's own manual
// encoding/binary-based wire style (internal/net/messages.go) rather
// than pulling in a generated SBE runtime.
package wire

import (
	"encoding/binary"
	"errors"
	"time"

	"fenrir/internal/model"
)

// Schema identifiers carried in every message header.
const (
	TradeBlockLength   uint16 = 57
	TradeTemplateID    uint16 = 201
	TradeSchemaID      uint16 = 2
	TradeSchemaVersion uint16 = 0

	headerLength  = 8
	messageLength = headerLength + int(TradeBlockLength)
)

// ErrMessageTooShort is returned by Decode when the supplied buffer is
// smaller than one full header+payload.
var ErrMessageTooShort = errors.New("wire: message too short")

// ErrUnexpectedTemplate is returned by Decode when the header's
// template_id does not identify a trade message.
var ErrUnexpectedTemplate = errors.New("wire: unexpected template id")

// TradeMessage is the decoded form of one wire trade message: the
// trade id assigned by the publishing sink, the originating book's
// symbol ordinal, the fill itself, and the wall-clock time it was
// encoded.
type TradeMessage struct {
	TradeID  uint64
	SymbolID uint64
	Trade    model.TradeEvent
	Time     time.Time
}

// Encode writes header + payload for msg into a freshly allocated
// 65-byte buffer, little-endian throughout, matching the offset table
// trade_codec.rs documents for every field.
func Encode(msg TradeMessage) []byte {
	buf := make([]byte, messageLength)

	binary.LittleEndian.PutUint16(buf[0:2], TradeBlockLength)
	binary.LittleEndian.PutUint16(buf[2:4], TradeTemplateID)
	binary.LittleEndian.PutUint16(buf[4:6], TradeSchemaID)
	binary.LittleEndian.PutUint16(buf[6:8], TradeSchemaVersion)

	body := buf[headerLength:]
	binary.LittleEndian.PutUint64(body[0:8], msg.TradeID)
	binary.LittleEndian.PutUint64(body[8:16], msg.SymbolID)
	binary.LittleEndian.PutUint64(body[16:24], msg.Trade.Price)
	binary.LittleEndian.PutUint64(body[24:32], msg.Trade.Size)
	body[32] = byte(msg.Trade.TakerSide)
	binary.LittleEndian.PutUint64(body[33:41], msg.Trade.BuyerOrderID)
	binary.LittleEndian.PutUint64(body[41:49], msg.Trade.SellerOrderID)
	binary.LittleEndian.PutUint64(body[49:57], uint64(msg.Time.UnixNano()))

	return buf
}

// Decode parses a buffer produced by Encode. It validates the header's
// template id but not block_length/schema_id/version, matching the
// reference decoder's acting_version/acting_block_length leniency
// toward trailing or reordered schema evolution.
func Decode(buf []byte) (TradeMessage, error) {
	if len(buf) < messageLength {
		return TradeMessage{}, ErrMessageTooShort
	}
	if templateID := binary.LittleEndian.Uint16(buf[2:4]); templateID != TradeTemplateID {
		return TradeMessage{}, ErrUnexpectedTemplate
	}

	body := buf[headerLength:messageLength]
	return TradeMessage{
		TradeID:  binary.LittleEndian.Uint64(body[0:8]),
		SymbolID: binary.LittleEndian.Uint64(body[8:16]),
		Trade: model.TradeEvent{
			Price:         binary.LittleEndian.Uint64(body[16:24]),
			Size:          binary.LittleEndian.Uint64(body[24:32]),
			TakerSide:     model.Side(body[32]),
			BuyerOrderID:  binary.LittleEndian.Uint64(body[33:41]),
			SellerOrderID: binary.LittleEndian.Uint64(body[41:49]),
		},
		Time: time.Unix(0, int64(binary.LittleEndian.Uint64(body[49:57]))).UTC(),
	}, nil
}
