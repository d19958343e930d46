package binance

import (
	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/shopspring/decimal"
)

// depthEvent is the wire shape of a combined-stream partial depth frame,
// e.g. wss://stream.binance.com:9443/ws/ethbtc@depth10@100ms. Binance
// encodes price and quantity as JSON strings to avoid float precision loss
// on the wire; parseLevels below converts them to decimal.Decimal.
type depthEvent struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// parseLevels converts raw [price, quantity] string pairs into PriceLevels,
// dropping non-positive-amount entries and truncating to domain.Depth, per
// spec §4.1's normalization algorithm. Malformed entries are skipped rather
// than failing the whole frame.
func parseLevels(raw [][]string) []domain.PriceLevel {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, pair := range raw {
		if len(pair) != 2 {
			continue
		}
		price, err := decimal.NewFromString(pair[0])
		if err != nil {
			continue
		}
		amount, err := decimal.NewFromString(pair[1])
		if err != nil {
			continue
		}
		if amount.Sign() <= 0 {
			continue
		}
		levels = append(levels, domain.PriceLevel{Price: price, Amount: amount})
		if len(levels) == domain.Depth {
			break
		}
	}
	return levels
}

// streamPath builds the combined-stream partial-depth path for a pair,
// e.g. "ethbtc" -> "ethbtc@depth10@100ms".
func streamPath(symbol string) string {
	return symbol + "@depth10@100ms"
}
