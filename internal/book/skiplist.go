package book

import (
	"github.com/huandu/skiplist"

	"vidar/internal/common"
)

// tickKeyAsc compares tick keys lowest first, for the ask side.
type tickKeyAsc struct{}

func (tickKeyAsc) Compare(lhs, rhs interface{}) int {
	l, r := lhs.(int64), rhs.(int64)
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func (tickKeyAsc) CalcScore(key interface{}) float64 {
	return float64(key.(int64))
}

// tickKeyDesc compares tick keys highest first, for the bid side.
type tickKeyDesc struct{}

func (tickKeyDesc) Compare(lhs, rhs interface{}) int {
	l, r := lhs.(int64), rhs.(int64)
	switch {
	case l > r:
		return -1
	case l < r:
		return 1
	}
	return 0
}

func (tickKeyDesc) CalcScore(key interface{}) float64 {
	return -float64(key.(int64))
}

// skiplistIndex is an alternate levelIndex backed by a skip list. Same
// contract as the btree index, selectable with WithSkiplistIndex.
type skiplistIndex struct {
	list *skiplist.SkipList
}

func newSkiplistIndex(side common.Side) levelIndex {
	if side == common.Buy {
		return &skiplistIndex{list: skiplist.New(tickKeyDesc{})}
	}
	return &skiplistIndex{list: skiplist.New(tickKeyAsc{})}
}

func (ix *skiplistIndex) best() (*PriceLevel, bool) {
	elem := ix.list.Front()
	if elem == nil {
		return nil, false
	}
	return elem.Value.(*PriceLevel), true
}

func (ix *skiplistIndex) get(ticks int64) (*PriceLevel, bool) {
	elem := ix.list.Get(ticks)
	if elem == nil {
		return nil, false
	}
	return elem.Value.(*PriceLevel), true
}

func (ix *skiplistIndex) set(level *PriceLevel) {
	ix.list.Set(level.Ticks, level)
}

func (ix *skiplistIndex) remove(ticks int64) {
	ix.list.Remove(ticks)
}

func (ix *skiplistIndex) walk(fn func(level *PriceLevel) bool) {
	for elem := ix.list.Front(); elem != nil; elem = elem.Next() {
		if !fn(elem.Value.(*PriceLevel)) {
			return
		}
	}
}

func (ix *skiplistIndex) len() int {
	return ix.list.Len()
}
