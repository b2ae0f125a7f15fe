package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

type Order struct {
	ID            uuid.UUID       // Book tracked uuid
	Side          Side            // Order side
	Price         decimal.Decimal // Submitted limit price
	PriceTicks    int64           // Limit price snapped to the tick grid
	Quantity      decimal.Decimal // Remaining quantity
	TotalQuantity decimal.Decimal // Total volume requested
	Timestamp     time.Time       // Time of creation of the order
	Status        OrderStatus     // Open, Filled or Canceled
	Fills         []*Fill         // Trades this order took part in, in order
}

// NewOrder builds an open limit order. Price validation and tick snapping
// belong to the book, which is the only constructor callers should use.
func NewOrder(side Side, price decimal.Decimal, priceTicks int64, quantity decimal.Decimal) (*Order, error) {
	if quantity.Sign() <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Order{
		ID:            uuid.New(),
		Side:          side,
		Price:         price,
		PriceTicks:    priceTicks,
		Quantity:      quantity,
		TotalQuantity: quantity,
		Timestamp:     time.Now(),
		Status:        Open,
	}, nil
}

func (order *Order) IsOpen() bool {
	return order.Status == Open
}

// Size is the notional value of the remaining quantity.
func (order *Order) Size() decimal.Decimal {
	return order.Price.Mul(order.Quantity)
}

// Cancel marks the order canceled. The book is responsible for only calling
// this on orders that are still open.
func (order *Order) Cancel() {
	order.Status = Canceled
}

// CanMatch reports whether the two orders are on opposite sides and their
// prices cross. Equal prices cross.
func (order *Order) CanMatch(other *Order) bool {
	if order.Side == other.Side {
		return false
	}
	if order.Side == Buy {
		return order.PriceTicks >= other.PriceTicks
	}
	return order.PriceTicks <= other.PriceTicks
}

// ApplyFill matches the resting order against an incoming taker. Both
// quantities are decremented by the matched amount, orders that reach zero
// transition to Filled, and the trade executes at the maker's price. Returns
// nil when the orders do not cross.
func (order *Order) ApplyFill(taker *Order) *Fill {
	if !order.CanMatch(taker) {
		return nil
	}

	quantity := decimal.Min(order.Quantity, taker.Quantity)
	if quantity.Sign() <= 0 {
		return nil
	}
	order.Quantity = order.Quantity.Sub(quantity)
	taker.Quantity = taker.Quantity.Sub(quantity)

	if order.Quantity.IsZero() {
		order.Status = Filled
	}
	if taker.Quantity.IsZero() {
		taker.Status = Filled
	}

	fill := NewFill(order, taker, quantity)
	order.Fills = append(order.Fills, fill)
	taker.Fills = append(taker.Fills, fill)
	return fill
}

func (order Order) String() string {
	return fmt.Sprintf(
		`ID:         %v
Side:       %v
Price:      %s
PriceTicks: %d
Quantity:   %s (Total: %s)
Timestamp:  %v
Status:     %v`,
		order.ID,
		order.Side,
		order.Price.String(),
		order.PriceTicks,
		order.Quantity.String(),
		order.TotalQuantity.String(),
		order.Timestamp.Format(time.RFC3339),
		order.Status,
	)
}
