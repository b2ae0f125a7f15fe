package book

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"vidar/internal/common"
)

// defaultTickSize is 0.01, the finest grid most cash instruments quote on.
var defaultTickSize = decimal.New(1, -2)

// Option configures an OrderBook at construction.
type Option func(*OrderBook)

// WithTickSize sets the price grid. Non-positive sizes are ignored and the
// default kept.
func WithTickSize(tickSize decimal.Decimal) Option {
	return func(book *OrderBook) {
		if tickSize.Sign() > 0 {
			book.tickSize = tickSize
		}
	}
}

// WithMarketDepth bounds each side to depth ticks beyond its best price.
// Levels outside the window are evicted after every add. Depth 0 keeps only
// the best level. Negative depths are ignored.
func WithMarketDepth(depth int64) Option {
	return func(book *OrderBook) {
		if depth >= 0 {
			book.marketDepth = depth
			book.hasDepth = true
		}
	}
}

// WithSkiplistIndex swaps the price-level index for the skip list backend.
func WithSkiplistIndex() Option {
	return func(book *OrderBook) {
		book.newIndex = newSkiplistIndex
	}
}

// OrderBook is a single-instrument limit order book matching under
// price-time priority. Callers must serialize access to one book; no method
// suspends or spawns work.
type OrderBook struct {
	tickSize    decimal.Decimal
	marketDepth int64
	hasDepth    bool
	newIndex    indexFactory

	// Price levels to orders sat on the price level.
	bids levelIndex
	asks levelIndex

	// Every order currently resting in either side, by id.
	openOrders map[uuid.UUID]*common.Order

	// Some book keeping
	nBids      uint64          // Track the number of bids in the book.
	nAsks      uint64          // Track the number of asks in the book.
	buyVolume  decimal.Decimal // Track the bid-side liquidity of the book.
	sellVolume decimal.Decimal // Track the ask-side liquidity of the book.
}

func New(opts ...Option) *OrderBook {
	book := &OrderBook{
		tickSize:   defaultTickSize,
		newIndex:   newBTreeIndex,
		openOrders: make(map[uuid.UUID]*common.Order),
		buyVolume:  decimal.Zero,
		sellVolume: decimal.Zero,
	}
	for _, opt := range opts {
		opt(book)
	}
	book.bids = book.newIndex(common.Buy)
	book.asks = book.newIndex(common.Sell)
	return book
}

func (book *OrderBook) TickSize() decimal.Decimal {
	return book.tickSize
}

// snapToTicks converts a decimal price to a whole tick count. The second
// return reports whether the price sat exactly on the tick grid.
func (book *OrderBook) snapToTicks(price decimal.Decimal) (int64, bool) {
	aligned := price.Mod(book.tickSize).IsZero()
	return price.DivRound(book.tickSize, 0).IntPart(), aligned
}

// priceOf converts a tick count back to a decimal price.
func (book *OrderBook) priceOf(ticks int64) decimal.Decimal {
	return decimal.NewFromInt(ticks).Mul(book.tickSize)
}

// CreateOrder builds a limit order priced on this book's tick grid. The
// order is not admitted until passed to Add. A tick-misaligned price is not
// an error here; Add rejects it.
func (book *OrderBook) CreateOrder(side common.Side, price, quantity decimal.Decimal) (*common.Order, error) {
	if price.Sign() <= 0 {
		return nil, common.ErrInvalidPrice
	}
	ticks, _ := book.snapToTicks(price)
	return common.NewOrder(side, price, ticks, quantity)
}

// Add matches the order against resting liquidity on the opposite side and
// rests any unfilled remainder on its own side, then enforces the market
// depth window. Fills are returned in execution order. Orders whose price
// was not a multiple of the tick size are dropped and nothing is returned.
func (book *OrderBook) Add(order *common.Order) []*common.Fill {
	if !book.priceOf(order.PriceTicks).Equal(order.Price) {
		log.Warn().
			Str("id", order.ID.String()).
			Str("price", order.Price.String()).
			Str("tickSize", book.tickSize.String()).
			Msg("rejecting tick-misaligned order")
		return nil
	}

	fills := book.match(order)

	if order.IsOpen() {
		book.rest(order)
	}

	book.enforceMarketDepth()

	log.Debug().
		Str("id", order.ID.String()).
		Int("fills", len(fills)).
		Bool("resting", order.IsOpen()).
		Msg("order added")
	return fills
}

// match consumes the opposite side's best price levels while they cross the
// incoming order, in price-time priority. Resting orders are the makers; the
// incoming order is the taker, so every fill executes at the resting price.
func (book *OrderBook) match(taker *common.Order) []*common.Fill {
	var fills []*common.Fill
	opposite := book.sideIndex(taker.Side.Opposite())

	for taker.IsOpen() {
		level, ok := opposite.best()
		if !ok {
			break
		}
		// No cross at the best level means no cross anywhere behind it.
		if taker.Side == common.Buy && taker.PriceTicks < level.Ticks {
			break
		}
		if taker.Side == common.Sell && taker.PriceTicks > level.Ticks {
			break
		}

		// Move forward on the queue while the taker lasts.
		consumed := 0
		for _, maker := range level.Orders {
			if !taker.IsOpen() {
				break
			}
			fill := maker.ApplyFill(taker)
			if fill == nil {
				break
			}
			fills = append(fills, fill)
			book.reduceVolume(maker.Side, fill.Quantity)

			if maker.Status != common.Filled {
				// Partially filled maker keeps its place at the front;
				// the taker must have been exhausted.
				break
			}
			consumed++
			delete(book.openOrders, maker.ID)
			book.decCount(maker.Side)
		}

		if consumed > 0 {
			level.Orders = level.Orders[consumed:]
		}
		if level.empty() {
			opposite.remove(level.Ticks)
		}
	}

	return fills
}

// rest inserts a still-open order at its price level on its own side,
// creating the level if absent, and registers it in the id index.
func (book *OrderBook) rest(order *common.Order) {
	own := book.sideIndex(order.Side)
	level, ok := own.get(order.PriceTicks)
	if !ok {
		level = &PriceLevel{Ticks: order.PriceTicks}
		own.set(level)
	}
	level.push(order)

	book.openOrders[order.ID] = order
	book.addVolume(order.Side, order.Quantity)
	book.incCount(order.Side)
}

// Cancel removes the open order with the given id from the book. Returns
// false when the id is unknown or the order already left the book.
func (book *OrderBook) Cancel(id uuid.UUID) bool {
	order, ok := book.openOrders[id]
	if !ok {
		return false
	}

	book.unlink(order)
	order.Cancel()

	log.Debug().
		Str("id", id.String()).
		Msg("order canceled")
	return true
}

// CancelString cancels by the textual (lowercase hex) form of the id.
func (book *OrderBook) CancelString(id string) bool {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return book.Cancel(parsed)
}

// unlink removes a resting order from its level queue, drops the level if it
// empties and keeps the id index and volume counters in step.
func (book *OrderBook) unlink(order *common.Order) {
	own := book.sideIndex(order.Side)
	if level, ok := own.get(order.PriceTicks); ok {
		if level.remove(order.ID) != nil && level.empty() {
			own.remove(level.Ticks)
		}
	}
	delete(book.openOrders, order.ID)
	book.reduceVolume(order.Side, order.Quantity)
	book.decCount(order.Side)
}

// enforceMarketDepth evicts every level further than marketDepth ticks from
// its side's best price. Evicted orders are canceled and released.
func (book *OrderBook) enforceMarketDepth() {
	if !book.hasDepth {
		return
	}

	if best, ok := book.bids.best(); ok {
		lower := best.Ticks - book.marketDepth
		book.evictOutside(book.bids, func(level *PriceLevel) bool {
			return level.Ticks < lower
		})
	}
	if best, ok := book.asks.best(); ok {
		upper := best.Ticks + book.marketDepth
		book.evictOutside(book.asks, func(level *PriceLevel) bool {
			return level.Ticks > upper
		})
	}
}

func (book *OrderBook) evictOutside(side levelIndex, outside func(*PriceLevel) bool) {
	var doomed []*PriceLevel
	side.walk(func(level *PriceLevel) bool {
		if outside(level) {
			doomed = append(doomed, level)
		}
		return true
	})

	evicted := 0
	for _, level := range doomed {
		for _, order := range level.Orders {
			order.Cancel()
			delete(book.openOrders, order.ID)
			book.reduceVolume(order.Side, order.Quantity)
			book.decCount(order.Side)
			evicted++
		}
		side.remove(level.Ticks)
	}

	if evicted > 0 {
		log.Info().
			Int("orders", evicted).
			Int("levels", len(doomed)).
			Msg("depth window evicted resting orders")
	}
}

// Get returns the resting order with the given id, if any. The returned
// handle must be treated as read-only.
func (book *OrderBook) Get(id uuid.UUID) (*common.Order, bool) {
	order, ok := book.openOrders[id]
	return order, ok
}

// GetString looks up by the textual (lowercase hex) form of the id.
func (book *OrderBook) GetString(id string) (*common.Order, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}
	return book.Get(parsed)
}

// OrdersAtPrice returns the first k resting orders at the given price and
// side, front of queue first, or all of them when k <= 0. Absent or
// tick-misaligned prices yield nothing.
func (book *OrderBook) OrdersAtPrice(price decimal.Decimal, side common.Side, k int) []*common.Order {
	ticks, aligned := book.snapToTicks(price)
	if !aligned {
		return nil
	}
	level, ok := book.sideIndex(side).get(ticks)
	if !ok {
		return nil
	}
	orders := level.Orders
	if k > 0 && k < len(orders) {
		orders = orders[:k]
	}
	out := make([]*common.Order, len(orders))
	copy(out, orders)
	return out
}

// BestBid returns the highest resting bid price, if any.
func (book *OrderBook) BestBid() (decimal.Decimal, bool) {
	level, ok := book.bids.best()
	if !ok {
		return decimal.Zero, false
	}
	return book.priceOf(level.Ticks), true
}

// BestAsk returns the lowest resting ask price, if any.
func (book *OrderBook) BestAsk() (decimal.Decimal, bool) {
	level, ok := book.asks.best()
	if !ok {
		return decimal.Zero, false
	}
	return book.priceOf(level.Ticks), true
}

// Spread is best ask minus best bid, defined only when both sides rest.
func (book *OrderBook) Spread() (decimal.Decimal, bool) {
	bid, bidOk := book.BestBid()
	ask, askOk := book.BestAsk()
	if !bidOk || !askOk {
		return decimal.Zero, false
	}
	return ask.Sub(bid), true
}

func (book *OrderBook) BuyVolume() decimal.Decimal {
	return book.buyVolume
}

func (book *OrderBook) SellVolume() decimal.Decimal {
	return book.sellVolume
}

func (book *OrderBook) OpenVolume() decimal.Decimal {
	return book.buyVolume.Add(book.sellVolume)
}

// BidCount returns the number of resting bid orders.
func (book *OrderBook) BidCount() uint64 {
	return book.nBids
}

// AskCount returns the number of resting ask orders.
func (book *OrderBook) AskCount() uint64 {
	return book.nAsks
}

// OpenOrders returns the number of orders resting on either side.
func (book *OrderBook) OpenOrders() uint64 {
	return book.nBids + book.nAsks
}

// Clear drops every resting order and price level.
func (book *OrderBook) Clear() {
	book.bids = book.newIndex(common.Buy)
	book.asks = book.newIndex(common.Sell)
	book.openOrders = make(map[uuid.UUID]*common.Order)
	book.nBids = 0
	book.nAsks = 0
	book.buyVolume = decimal.Zero
	book.sellVolume = decimal.Zero

	log.Debug().Msg("book cleared")
}

func (book *OrderBook) sideIndex(side common.Side) levelIndex {
	if side == common.Buy {
		return book.bids
	}
	return book.asks
}

func (book *OrderBook) addVolume(side common.Side, quantity decimal.Decimal) {
	switch side {
	case common.Buy:
		book.buyVolume = book.buyVolume.Add(quantity)
	case common.Sell:
		book.sellVolume = book.sellVolume.Add(quantity)
	}
}

func (book *OrderBook) reduceVolume(side common.Side, quantity decimal.Decimal) {
	switch side {
	case common.Buy:
		book.buyVolume = book.buyVolume.Sub(quantity)
	case common.Sell:
		book.sellVolume = book.sellVolume.Sub(quantity)
	}
}

func (book *OrderBook) incCount(side common.Side) {
	if side == common.Buy {
		book.nBids++
	} else {
		book.nAsks++
	}
}

func (book *OrderBook) decCount(side common.Side) {
	if side == common.Buy {
		book.nBids--
	} else {
		book.nAsks--
	}
}

func (book *OrderBook) String() string {
	format := func(p decimal.Decimal, ok bool) string {
		if !ok {
			return "-"
		}
		return p.String()
	}
	bid, bidOk := book.BestBid()
	ask, askOk := book.BestAsk()
	spread, spreadOk := book.Spread()
	return fmt.Sprintf(
		"Best Bid: %s, Best Ask: %s (Spread: %s) | Open Buy Volume: %s, Open Sell Volume: %s",
		format(bid, bidOk),
		format(ask, askOk),
		format(spread, spreadOk),
		book.buyVolume.String(),
		book.sellVolume.String(),
	)
}
