package publisher

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"

	"fenrir/internal/model"
)

// MessageType identifies the command encoded in a client frame.
// Grounded on the teacher's internal/net/messages.go MessageType enum,
// extended with AmendOrder since spec.md's core exposes amend_size as
// a first-class operation the teacher's original protocol never
// covered.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	AmendOrder
)

var (
	ErrInvalidMessageType = errors.New("publisher: invalid message type")
	ErrMessageTooShort    = errors.New("publisher: message too short")
)

const (
	baseHeaderLen = 2
	symbolLen     = 8

	// type(2) + symbol(8) + side(1) + price(8) + size(8) + usernameLen(1)
	newOrderFixedLen = 2 + symbolLen + 1 + 8 + 8 + 1
	// type(2) + symbol(8) + orderID(8)
	cancelOrderLen = 2 + symbolLen + 8
	// type(2) + symbol(8) + orderID(8) + newSize(8)
	amendOrderLen = 2 + symbolLen + 8 + 8
)

// Message is any parsed client frame.
type Message interface {
	Type() MessageType
}

// NewOrderRequest places an order on Symbol. Price == 0 means market.
type NewOrderRequest struct {
	Symbol   string
	Side     model.Side
	Price    float64
	Size     float64
	Username string
}

func (NewOrderRequest) Type() MessageType { return NewOrder }

// CancelOrderRequest cancels a resting order by id.
type CancelOrderRequest struct {
	Symbol  string
	OrderID uint64
}

func (CancelOrderRequest) Type() MessageType { return CancelOrder }

// AmendOrderRequest changes a resting order's size to NewSize (raw
// float, scaled by the gateway before it reaches the Matcher).
type AmendOrderRequest struct {
	Symbol  string
	OrderID uint64
	NewSize float64
}

func (AmendOrderRequest) Type() MessageType { return AmendOrder }

func encodeSymbol(symbol string) [symbolLen]byte {
	var out [symbolLen]byte
	copy(out[:], symbol)
	return out
}

func decodeSymbol(buf []byte) string {
	return strings.TrimRight(string(buf[:symbolLen]), "\x00")
}

// ParseMessage decodes one client frame, big-endian throughout — this
// is the gateway's own command protocol, distinct from the
// little-endian SBE-style market-data feed in internal/wire, and kept
// in the teacher's original byte order (internal/net/messages.go).
func ParseMessage(buf []byte) (Message, error) {
	if len(buf) < baseHeaderLen {
		return nil, ErrMessageTooShort
	}
	msgType := MessageType(binary.BigEndian.Uint16(buf[0:2]))
	switch msgType {
	case NewOrder:
		return parseNewOrder(buf)
	case CancelOrder:
		return parseCancelOrder(buf)
	case AmendOrder:
		return parseAmendOrder(buf)
	case Heartbeat:
		return nil, nil
	default:
		return nil, ErrInvalidMessageType
	}
}

func parseNewOrder(buf []byte) (NewOrderRequest, error) {
	if len(buf) < newOrderFixedLen {
		return NewOrderRequest{}, ErrMessageTooShort
	}
	symbol := decodeSymbol(buf[2 : 2+symbolLen])
	offset := 2 + symbolLen
	side := model.Side(buf[offset])
	price := math.Float64frombits(binary.BigEndian.Uint64(buf[offset+1 : offset+9]))
	size := math.Float64frombits(binary.BigEndian.Uint64(buf[offset+9 : offset+17]))
	usernameLen := int(buf[offset+17])

	total := newOrderFixedLen + usernameLen
	if len(buf) < total {
		return NewOrderRequest{}, ErrMessageTooShort
	}
	username := string(buf[newOrderFixedLen:total])

	return NewOrderRequest{
		Symbol:   symbol,
		Side:     side,
		Price:    price,
		Size:     size,
		Username: username,
	}, nil
}

func parseCancelOrder(buf []byte) (CancelOrderRequest, error) {
	if len(buf) < cancelOrderLen {
		return CancelOrderRequest{}, ErrMessageTooShort
	}
	symbol := decodeSymbol(buf[2 : 2+symbolLen])
	orderID := binary.BigEndian.Uint64(buf[2+symbolLen : cancelOrderLen])
	return CancelOrderRequest{Symbol: symbol, OrderID: orderID}, nil
}

func parseAmendOrder(buf []byte) (AmendOrderRequest, error) {
	if len(buf) < amendOrderLen {
		return AmendOrderRequest{}, ErrMessageTooShort
	}
	symbol := decodeSymbol(buf[2 : 2+symbolLen])
	orderID := binary.BigEndian.Uint64(buf[2+symbolLen : 2+symbolLen+8])
	newSize := math.Float64frombits(binary.BigEndian.Uint64(buf[2+symbolLen+8 : amendOrderLen]))
	return AmendOrderRequest{Symbol: symbol, OrderID: orderID, NewSize: newSize}, nil
}

// EncodeNewOrder serialises req for a client to send; exported for the
// CLI client and for tests.
func EncodeNewOrder(req NewOrderRequest) []byte {
	buf := make([]byte, newOrderFixedLen+len(req.Username))
	binary.BigEndian.PutUint16(buf[0:2], uint16(NewOrder))
	symbol := encodeSymbol(req.Symbol)
	copy(buf[2:2+symbolLen], symbol[:])
	offset := 2 + symbolLen
	buf[offset] = byte(req.Side)
	binary.BigEndian.PutUint64(buf[offset+1:offset+9], math.Float64bits(req.Price))
	binary.BigEndian.PutUint64(buf[offset+9:offset+17], math.Float64bits(req.Size))
	buf[offset+17] = byte(len(req.Username))
	copy(buf[newOrderFixedLen:], req.Username)
	return buf
}

// EncodeCancelOrder serialises req for a client to send.
func EncodeCancelOrder(req CancelOrderRequest) []byte {
	buf := make([]byte, cancelOrderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	symbol := encodeSymbol(req.Symbol)
	copy(buf[2:2+symbolLen], symbol[:])
	binary.BigEndian.PutUint64(buf[2+symbolLen:cancelOrderLen], req.OrderID)
	return buf
}

// EncodeAmendOrder serialises req for a client to send.
func EncodeAmendOrder(req AmendOrderRequest) []byte {
	buf := make([]byte, amendOrderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(AmendOrder))
	symbol := encodeSymbol(req.Symbol)
	copy(buf[2:2+symbolLen], symbol[:])
	binary.BigEndian.PutUint64(buf[2+symbolLen:2+symbolLen+8], req.OrderID)
	binary.BigEndian.PutUint64(buf[2+symbolLen+8:amendOrderLen], math.Float64bits(req.NewSize))
	return buf
}
