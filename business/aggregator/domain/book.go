// Package domain holds the order-book aggregation engine's core types and
// merge algorithm. Nothing in this package talks to a network or a clock;
// it is pure data and pure functions, exercised directly by its tests.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradedPair is an ordered pair of currency symbols and the routing key of
// the entire system. (ETH, BTC) and (BTC, ETH) are distinct pairs.
type TradedPair struct {
	First  string
	Second string
}

// String renders the pair as "FIRST/SECOND", used in logs and metric tags.
func (p TradedPair) String() string {
	return p.First + "/" + p.Second
}

// PriceLevel is one (price, amount) entry of an order book. Amount zero
// means the level is absent; the feed adapters' parseLevels functions drop
// such entries rather than constructing a PriceLevel for them.
type PriceLevel struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// ExchangeLevel is a PriceLevel tagged with its originating exchange, kept
// through merging so subscribers can see per-exchange provenance.
type ExchangeLevel struct {
	Exchange string
	PriceLevel
}

// ExchangeBook is one exchange's timestamped top-of-book snapshot for a
// single pair. Bids are ordered highest price first, asks lowest first, each
// truncated by the adapter to at most Depth entries.
type ExchangeBook struct {
	Exchange  string
	Pair      TradedPair
	Bids      []PriceLevel
	Asks      []PriceLevel
	Timestamp time.Time
}

// Depth is the top-of-book depth carried by every ExchangeBook and Summary
// side: N=10 per spec.
const Depth = 10
