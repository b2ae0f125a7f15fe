package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidar/internal/common"
)

// The two index implementations must behave identically; every index test
// here runs against both.

var indexFactories = map[string]indexFactory{
	"btree":    newBTreeIndex,
	"skiplist": newSkiplistIndex,
}

func levelAt(ticks int64) *PriceLevel {
	return &PriceLevel{Ticks: ticks}
}

func TestIndex_BidsOrderHighestFirst(t *testing.T) {
	for name, factory := range indexFactories {
		t.Run(name, func(t *testing.T) {
			ix := factory(common.Buy)
			for _, ticks := range []int64{100, 105, 95} {
				ix.set(levelAt(ticks))
			}

			best, ok := ix.best()
			require.True(t, ok)
			assert.Equal(t, int64(105), best.Ticks)

			var walked []int64
			ix.walk(func(level *PriceLevel) bool {
				walked = append(walked, level.Ticks)
				return true
			})
			assert.Equal(t, []int64{105, 100, 95}, walked)
		})
	}
}

func TestIndex_AsksOrderLowestFirst(t *testing.T) {
	for name, factory := range indexFactories {
		t.Run(name, func(t *testing.T) {
			ix := factory(common.Sell)
			for _, ticks := range []int64{100, 105, 95} {
				ix.set(levelAt(ticks))
			}

			best, ok := ix.best()
			require.True(t, ok)
			assert.Equal(t, int64(95), best.Ticks)

			var walked []int64
			ix.walk(func(level *PriceLevel) bool {
				walked = append(walked, level.Ticks)
				return true
			})
			assert.Equal(t, []int64{95, 100, 105}, walked)
		})
	}
}

func TestIndex_GetAndRemove(t *testing.T) {
	for name, factory := range indexFactories {
		t.Run(name, func(t *testing.T) {
			ix := factory(common.Sell)
			ix.set(levelAt(100))
			ix.set(levelAt(105))
			require.Equal(t, 2, ix.len())

			level, ok := ix.get(100)
			require.True(t, ok)
			assert.Equal(t, int64(100), level.Ticks)

			_, ok = ix.get(101)
			assert.False(t, ok)

			ix.remove(100)
			assert.Equal(t, 1, ix.len())
			_, ok = ix.get(100)
			assert.False(t, ok)

			best, ok := ix.best()
			require.True(t, ok)
			assert.Equal(t, int64(105), best.Ticks)

			ix.remove(105)
			_, ok = ix.best()
			assert.False(t, ok)
			assert.Equal(t, 0, ix.len())
		})
	}
}

func TestIndex_WalkStopsEarly(t *testing.T) {
	for name, factory := range indexFactories {
		t.Run(name, func(t *testing.T) {
			ix := factory(common.Buy)
			for _, ticks := range []int64{1, 2, 3, 4} {
				ix.set(levelAt(ticks))
			}

			visited := 0
			ix.walk(func(level *PriceLevel) bool {
				visited++
				return visited < 2
			})
			assert.Equal(t, 2, visited)
		})
	}
}

func TestPriceLevel_RemovePreservesOrder(t *testing.T) {
	level := levelAt(100)
	var ids []*common.Order
	for i := 0; i < 3; i++ {
		one := decimal.NewFromInt(1)
		order, err := common.NewOrder(common.Buy, one, 100, one)
		require.NoError(t, err)
		level.push(order)
		ids = append(ids, order)
	}

	removed := level.remove(ids[1].ID)
	require.NotNil(t, removed)
	assert.Equal(t, ids[1].ID, removed.ID)
	require.Len(t, level.Orders, 2)
	assert.Equal(t, ids[0].ID, level.Orders[0].ID)
	assert.Equal(t, ids[2].ID, level.Orders[1].ID)

	assert.Nil(t, level.remove(ids[1].ID))
	assert.False(t, level.empty())
}
