// Package broadcast implements the spec §4.4 / §9 "Fan-out channel": a
// many-reader structure with per-subscriber buffering where a slow consumer
// can never block the producer. Grounded on the shared-broadcast pattern
// used for price fan-out in the retrieval pack's ws_poc server: a
// non-blocking buffered send per subscriber, with a consecutive-failure
// counter that disconnects clients who cannot keep up instead of
// backpressuring the publisher.
package broadcast

import (
	"context"
	"sync"

	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/fd1az/orderbook-aggregator/internal/logger"
)

// maxConsecutiveFailures is the "slow subscriber" threshold (spec §8 "Slow
// subscriber" scenario): after this many back-to-back full-buffer sends,
// the subscriber is dropped rather than left to backpressure Publish.
const maxConsecutiveFailures = 3

// bufferSize is the per-subscriber queue depth. Generous enough to absorb
// a momentary stall without false-positive disconnects, bounded enough that
// a genuinely stuck subscriber is noticed within a handful of summaries.
const bufferSize = 16

type subscriber struct {
	ch                 chan domain.Summary
	consecutiveFailure int
}

// Broadcast is the default app.Broadcaster implementation.
type Broadcast struct {
	log logger.LoggerInterface

	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	closed bool
}

// New creates an empty Broadcast.
func New(log logger.LoggerInterface) *Broadcast {
	return &Broadcast{log: log, subs: make(map[int]*subscriber)}
}

// Publish delivers summary to every subscriber, never blocking on a full
// buffer. A subscriber that fails maxConsecutiveFailures consecutive sends
// is disconnected (spec: "the aggregator itself does not block").
func (b *Broadcast) Publish(summary domain.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for id, sub := range b.subs {
		select {
		case sub.ch <- summary:
			sub.consecutiveFailure = 0
		default:
			sub.consecutiveFailure++
			if sub.consecutiveFailure >= maxConsecutiveFailures {
				b.log.Warnc(context.Background(), 1, "disconnecting lagging subscriber", "subscriber_id", id)
				delete(b.subs, id)
				close(sub.ch)
			}
		}
	}
}

// Subscribe returns a fresh receive channel and an idempotent unsubscribe
// function. The channel is closed either by Publish (lag disconnect), by
// the returned unsubscribe function, or by Close.
func (b *Broadcast) Subscribe() (<-chan domain.Summary, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscriber{ch: make(chan domain.Summary, bufferSize)}

	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	b.subs[id] = sub

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if s, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.ch)
			}
		})
	}

	return sub.ch, unsubscribe
}

// Close terminates every current subscription and rejects future ones.
func (b *Broadcast) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
