package book

import (
	"github.com/shopspring/decimal"
)

// LevelSummary aggregates one price level for market-state queries. It is a
// snapshot; later book mutations do not flow back into it.
type LevelSummary struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Orders   int
}

// LevelCount returns the number of live price levels on each side.
func (book *OrderBook) LevelCount() (bidLevels, askLevels int) {
	return book.bids.len(), book.asks.len()
}

// BidLevels returns up to n best bid levels, highest price first. n <= 0
// returns every level.
func (book *OrderBook) BidLevels(n int) []LevelSummary {
	return book.summarize(book.bids, n)
}

// AskLevels returns up to n best ask levels, lowest price first. n <= 0
// returns every level.
func (book *OrderBook) AskLevels(n int) []LevelSummary {
	return book.summarize(book.asks, n)
}

func (book *OrderBook) summarize(side levelIndex, n int) []LevelSummary {
	var out []LevelSummary
	side.walk(func(level *PriceLevel) bool {
		out = append(out, LevelSummary{
			Price:    book.priceOf(level.Ticks),
			Quantity: level.quantity(),
			Orders:   len(level.Orders),
		})
		return n <= 0 || len(out) < n
	})
	return out
}
