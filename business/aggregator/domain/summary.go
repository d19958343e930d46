package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Summary is the consolidated top-of-book across all configured exchanges
// for one pair: at most Depth levels per side, spread of the best visible
// prices. Spread is nil when either side is empty — spec §3 requires
// picking one representation and documenting it; this implementation
// represents "undefined" as a nil pointer internally and encodes it as NaN
// on the wire (see api/orderbook/v1).
type Summary struct {
	Spread *decimal.Decimal
	Bids   []ExchangeLevel
	Asks   []ExchangeLevel
}

// Merge implements the spec §4.2 merge algorithm: collect all levels from
// the latest book of every known source, sort bids descending and asks
// ascending with a stable tie-break, truncate to Depth, and compute the
// spread from the post-truncation top-of-book.
//
// books must be keyed by source id; Merge iterates sources in sorted key
// order so that, combined with sort.SliceStable, equal-price levels from
// different sources always tie-break the same way for the same input —
// this is what spec §8's determinism property requires.
func Merge(books map[string]ExchangeBook) Summary {
	sourceIDs := make([]string, 0, len(books))
	for id := range books {
		sourceIDs = append(sourceIDs, id)
	}
	sort.Strings(sourceIDs)

	var bids, asks []ExchangeLevel
	for _, id := range sourceIDs {
		book := books[id]
		for _, lvl := range book.Bids {
			bids = append(bids, ExchangeLevel{Exchange: book.Exchange, PriceLevel: lvl})
		}
		for _, lvl := range book.Asks {
			asks = append(asks, ExchangeLevel{Exchange: book.Exchange, PriceLevel: lvl})
		}
	}

	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].Price.GreaterThan(bids[j].Price)
	})
	sort.SliceStable(asks, func(i, j int) bool {
		return asks[i].Price.LessThan(asks[j].Price)
	})

	if len(bids) > Depth {
		bids = bids[:Depth]
	}
	if len(asks) > Depth {
		asks = asks[:Depth]
	}

	var spread *decimal.Decimal
	if len(bids) > 0 && len(asks) > 0 {
		s := asks[0].Price.Sub(bids[0].Price)
		spread = &s
	}

	return Summary{Spread: spread, Bids: bids, Asks: asks}
}
