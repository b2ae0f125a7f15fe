package book

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vidar/internal/common"
)

// PriceLevel holds the resting orders at a single tick price, sorted by time
// added as they will be push-back'd. Matching consumes from the front.
type PriceLevel struct {
	Ticks  int64
	Orders []*common.Order
}

func (level *PriceLevel) push(order *common.Order) {
	level.Orders = append(level.Orders, order)
}

// remove unlinks the order with the given id from the queue, preserving the
// arrival order of the rest. Returns nil if the id is not at this level.
func (level *PriceLevel) remove(id uuid.UUID) *common.Order {
	for i, order := range level.Orders {
		if order.ID == id {
			level.Orders = append(level.Orders[:i], level.Orders[i+1:]...)
			return order
		}
	}
	return nil
}

func (level *PriceLevel) empty() bool {
	return len(level.Orders) == 0
}

// quantity sums the remaining quantity resting at this level.
func (level *PriceLevel) quantity() decimal.Decimal {
	total := decimal.Zero
	for _, order := range level.Orders {
		total = total.Add(order.Quantity)
	}
	return total
}
