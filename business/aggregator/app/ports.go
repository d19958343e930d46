// Package app holds the aggregation engine's orchestration: the Aggregator
// merge loop, the Aggregator Registry, and the ports the infra layer
// implements (exchange feed adapters, the broadcast fan-out).
package app

import (
	"context"

	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
)

// Feed is the spec §4.1 Exchange Feed Adapter contract: one instance per
// (exchange, pair). Start opens the connection, performs the exchange's
// subscription handshake, and returns a channel of normalized snapshots.
// The returned channel is closed when the adapter gives up for good
// (reconnect budget exhausted); it is not restartable — callers that need
// another attempt call Start again.
type Feed interface {
	// ID is the short ASCII exchange identifier carried on every
	// ExchangeLevel this feed produces (e.g. "Binance", "Bitstamp").
	ID() string
	Start(ctx context.Context, pair domain.TradedPair) (<-chan domain.ExchangeBook, error)
}

// Broadcaster is the spec §4.4 Subscription Fan-Out contract the broadcast
// infra package implements: a many-reader structure fed by a single writer
// (the Aggregator), where a slow reader never blocks the writer.
type Broadcaster interface {
	// Publish delivers summary to every current subscriber without
	// blocking. Implementations must make progress even if a subscriber's
	// buffer is full.
	Publish(summary domain.Summary)
	// Subscribe returns a fresh per-subscriber channel and an unsubscribe
	// function the caller must invoke exactly once when done.
	Subscribe() (<-chan domain.Summary, func())
	// Close terminates every current and future subscription.
	Close()
}
