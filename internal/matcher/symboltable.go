package matcher

import "fenrir/internal/book"

// symbolEntry pairs a Book with the precision metadata the Matcher
// needs to scale float inputs into integer ticks/lots for it.
type symbolEntry struct {
	book     *book.Book
	metadata SymbolMetadata
}

// SymbolMetadata describes one registered symbol's display name and
// fixed-point precision.
type SymbolMetadata struct {
	Symbol         string
	PricePrecision uint8
	SizePrecision  uint8
	DisplayName    string
}

// symbolTable maps a symbol string to a dense integer ordinal and
// keeps the Book/metadata pair in a slice indexed by that ordinal.
// Callers name symbols by string, so every get (and therefore every
// Order/Cancel/AmendSize call) hashes the symbol string once in the
// ordinals map before indexing the slice. Grounded in original_source/matcher/src/
// symbol_table.rs, whose SymbolTable<V> is an array indexed by a
// compile-time-fixed Symbol enum; this Go port keeps the same
// array-indexed-by-ordinal idea (spec.md §9 OPEN QUESTION 3) but grows
// the ordinal assignment at runtime since this engine does not pin the
// symbol set to a hardcoded enum of three.
type symbolTable struct {
	ordinals map[string]int
	entries  []*symbolEntry
}

func newSymbolTable() *symbolTable {
	return &symbolTable{ordinals: make(map[string]int)}
}

func (t *symbolTable) add(symbol string, entry *symbolEntry) (ok bool) {
	if _, exists := t.ordinals[symbol]; exists {
		return false
	}
	ordinal := len(t.entries)
	t.ordinals[symbol] = ordinal
	t.entries = append(t.entries, entry)
	return true
}

func (t *symbolTable) get(symbol string) (*symbolEntry, bool) {
	ordinal, ok := t.ordinals[symbol]
	if !ok {
		return nil, false
	}
	return t.entries[ordinal], true
}
