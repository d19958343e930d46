package bitstamp

import (
	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/shopspring/decimal"
)

// subscribeFrame is the Pusher-style subscription frame Bitstamp expects
// immediately after connecting: {"event":"bts:subscribe","data":{"channel":"order_book_ethbtc"}}.
type subscribeFrame struct {
	Event string         `json:"event"`
	Data  subscribeFrameData `json:"data"`
}

type subscribeFrameData struct {
	Channel string `json:"channel"`
}

// channelFor builds the order-book channel name for a pair symbol, e.g.
// "ethbtc" -> "order_book_ethbtc".
func channelFor(symbol string) string {
	return "order_book_" + symbol
}

// orderBookEvent is a Bitstamp "data" channel order-book push: repeated
// [price, amount] string pairs, same shape as the initial snapshot.
type orderBookEvent struct {
	Event string             `json:"event"`
	Data  orderBookEventData `json:"data"`
}

type orderBookEventData struct {
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
}

// isSubscriptionAck reports whether event is the "bts:subscription_succeeded"
// handshake acknowledgement rather than an order-book data frame.
func isSubscriptionAck(event string) bool {
	return event == "bts:subscription_succeeded"
}

// isOrderBookData reports whether event carries order-book levels.
func isOrderBookData(event string) bool {
	return event == "data"
}

// parseLevels mirrors binance.parseLevels: Bitstamp also encodes prices and
// amounts as strings, drops non-positive-amount levels, and truncates to
// domain.Depth.
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
