package book

import (
	"github.com/tidwall/btree"

	"vidar/internal/common"
)

// levelIndex is one side of the book: price levels keyed by tick count and
// iterated best-first. The bid side orders highest price first, the ask side
// lowest price first.
type levelIndex interface {
	best() (*PriceLevel, bool)
	get(ticks int64) (*PriceLevel, bool)
	set(level *PriceLevel)
	remove(ticks int64)
	// walk visits levels best-first until fn returns false.
	walk(fn func(level *PriceLevel) bool)
	len() int
}

type indexFactory func(side common.Side) levelIndex

// btreeIndex is the default levelIndex, a B-tree of price levels whose
// comparator encodes the side's priority so that Min is always the best.
type btreeIndex struct {
	tree *btree.BTreeG[*PriceLevel]
}

func newBTreeIndex(side common.Side) levelIndex {
	if side == common.Buy {
		// Sorted greatest first.
		return &btreeIndex{tree: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.Ticks > b.Ticks
		})}
	}
	// Sorted least first.
	return &btreeIndex{tree: btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Ticks < b.Ticks
	})}
}

func (ix *btreeIndex) best() (*PriceLevel, bool) {
	return ix.tree.MinMut()
}

func (ix *btreeIndex) get(ticks int64) (*PriceLevel, bool) {
	return ix.tree.GetMut(&PriceLevel{Ticks: ticks})
}

func (ix *btreeIndex) set(level *PriceLevel) {
	ix.tree.Set(level)
}

func (ix *btreeIndex) remove(ticks int64) {
	ix.tree.Delete(&PriceLevel{Ticks: ticks})
}

func (ix *btreeIndex) walk(fn func(level *PriceLevel) bool) {
	ix.tree.Scan(fn)
}

func (ix *btreeIndex) len() int {
	return ix.tree.Len()
}
