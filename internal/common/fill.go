package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fill accounts for the two orders that matched. It is created once by the
// matching and never mutated afterwards.
type Fill struct {
	Quantity   decimal.Decimal // Traded quantity
	PriceTicks int64           // Execution price in ticks (the maker's price)
	BuyID      uuid.UUID       // Buy side order
	SellID     uuid.UUID       // Sell side order
	Timestamp  time.Time       // Time the trade was struck
}

// NewFill builds the trade record for a maker/taker match. The timestamp is
// stamped here, at creation.
func NewFill(maker, taker *Order, quantity decimal.Decimal) *Fill {
	fill := &Fill{
		Quantity:   quantity,
		PriceTicks: maker.PriceTicks,
		Timestamp:  time.Now(),
	}
	if maker.Side == Buy {
		fill.BuyID = maker.ID
		fill.SellID = taker.ID
	} else {
		fill.BuyID = taker.ID
		fill.SellID = maker.ID
	}
	return fill
}

func (f Fill) String() string {
	return fmt.Sprintf(
		`BuyID:      %v
SellID:     %v
Timestamp:  %v
Quantity:   %s
PriceTicks: %d`,
		f.BuyID,
		f.SellID,
		f.Timestamp.Format(time.RFC3339),
		f.Quantity.String(),
		f.PriceTicks,
	)
}
