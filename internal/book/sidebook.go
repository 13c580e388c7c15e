package book

import (
	"fenrir/internal/model"

	"github.com/tidwall/btree"
)

// levels is the ordered price-level set backing one side of the book.
// Using the teacher's own dependency choice (tidwall/btree) for O(log P)
// insertion/removal; best-price reads are O(1) from a best pointer that
// SideBook caches from the tree's Min() on every insert and removal.
type levels = btree.BTreeG[*PriceLevel]

// SideBook is an ordered collection of price levels for one side of a
// Book: bids descending by price, asks ascending by price. It caches
// the best level and tracks the total resting order count across all
// of its levels.
type SideBook struct {
	side  model.Side
	tree  *levels
	best  *PriceLevel
	nOrds int
}

// NewSideBook constructs an empty SideBook for the given side. Bid
// trees order levels highest-price-first; ask trees order
// lowest-price-first — both expressed as the "less" comparator handed
// to the btree so that Min() is always the best price for that side.
func NewSideBook(side model.Side) *SideBook {
	var less func(a, b *PriceLevel) bool
	switch side {
	case model.Bid:
		less = func(a, b *PriceLevel) bool { return a.Price > b.Price }
	default:
		less = func(a, b *PriceLevel) bool { return a.Price < b.Price }
	}
	return &SideBook{
		side: side,
		tree: btree.NewBTreeG(less),
	}
}

// Best returns the best (highest bid / lowest ask) price level, or nil
// if the side is empty. O(1): served from the cached pointer.
func (s *SideBook) Best() *PriceLevel { return s.best }

// Size is the total number of resting orders across every level on
// this side.
func (s *SideBook) Size() int { return s.nOrds }

// GetOrInsert returns the PriceLevel at price, creating and inserting
// it (and refreshing the cached best pointer) if it does not already
// exist. O(log P).
func (s *SideBook) GetOrInsert(price uint64) *PriceLevel {
	probe := &PriceLevel{Price: price}
	if found, ok := s.tree.Get(probe); ok {
		return found
	}
	lvl := newPriceLevel(price)
	s.tree.Set(lvl)
	s.refreshBest()
	return lvl
}

// Get returns the PriceLevel at price without creating it.
func (s *SideBook) Get(price uint64) (*PriceLevel, bool) {
	return s.tree.Get(&PriceLevel{Price: price})
}

// RemoveIfEmpty deletes the level at price from the tree if it has no
// resting orders left, refreshing the cached best pointer. O(log P).
func (s *SideBook) RemoveIfEmpty(lvl *PriceLevel) {
	if !lvl.IsEmpty() {
		return
	}
	s.tree.Delete(lvl)
	s.refreshBest()
}

func (s *SideBook) refreshBest() {
	best, ok := s.tree.Min()
	if !ok {
		s.best = nil
		return
	}
	s.best = best
}

// TopN returns up to n levels in walk order (bids descending, asks
// ascending).
func (s *SideBook) TopN(n int) []*PriceLevel {
	if n <= 0 {
		return nil
	}
	out := make([]*PriceLevel, 0, n)
	s.tree.Scan(func(lvl *PriceLevel) bool {
		out = append(out, lvl)
		return len(out) < n
	})
	return out
}

// Levels returns every live level in walk order. Used by tests and
// snapshot/debug reads, not the matching hot path.
func (s *SideBook) Levels() []*PriceLevel {
	out := make([]*PriceLevel, 0, s.tree.Len())
	s.tree.Scan(func(lvl *PriceLevel) bool {
		out = append(out, lvl)
		return true
	})
	return out
}

func (s *SideBook) incOrders() { s.nOrds++ }
func (s *SideBook) decOrders() { s.nOrds-- }
