package model

import "errors"

// Sentinel errors returned from book/matcher lookups. Per the error
// taxonomy these surface to the caller directly and never through an
// event: they signal a programmer mistake (unknown symbol/order),
// not a domain outcome.
var (
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidOrderSize = errors.New("invalid order size")
	ErrSymbolExists     = errors.New("symbol already registered")
	ErrOrderExists      = errors.New("order id already resting")
)
