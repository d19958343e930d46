// Package binance implements the spec §4.1 Exchange Feed Adapter for
// Binance's combined-stream partial-depth WebSocket channel. Grounded on
// the teacher's wsconn-based reconnecting client, with a gobreaker circuit
// breaker wrapped around the connect step to implement the spec §9(a)
// reconnection policy: bounded retries, then SourceUnavailable for good.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/fd1az/orderbook-aggregator/internal/apperror"
	"github.com/fd1az/orderbook-aggregator/internal/logger"
	"github.com/fd1az/orderbook-aggregator/internal/wsconn"
	"github.com/sony/gobreaker/v2"
)

// Adapter is the Binance Feed implementation (app.Feed).
type Adapter struct {
	urlTemplate string
	restBaseURL string
	log         logger.LoggerInterface
	breaker     *gobreaker.CircuitBreaker[*wsconn.Client]
}

// Config configures a Binance Adapter.
type Config struct {
	// URLTemplate contains a "{symbol}" placeholder, e.g.
	// "wss://stream.binance.com:9443/ws/{symbol}".
	URLTemplate string

	// InitialBackoff, MaxBackoff and MaxReconnects are not read by New or
	// Start: every connection uses a 1s initial backoff, a 30s maximum
	// backoff and at most 5 connect attempts, whatever these fields hold.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int

	// RESTBaseURL overrides the depth snapshot's REST endpoint. Empty
	// means Binance's public API; tests point this at a local server.
	RESTBaseURL string
}

// New creates a Binance Adapter. Its circuit breaker wraps Start's connect
// step: it opens after 5 consecutive failed connects and stays open for 30s
// before allowing a half-open probe. Start returns SourceUnavailable when a
// connect still fails after wsconn's own bounded retries, or while the
// breaker is open.
func New(cfg Config, log logger.LoggerInterface) *Adapter {
	breakerSettings := gobreaker.Settings{
		Name:        "binance-feed",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Adapter{
		urlTemplate: cfg.URLTemplate,
		restBaseURL: cfg.RESTBaseURL,
		log:         log,
		breaker:     gobreaker.NewCircuitBreaker[*wsconn.Client](breakerSettings),
	}
}

// ID is the exchange identifier tagged onto every level this adapter emits.
func (a *Adapter) ID() string { return "Binance" }

// Start opens the WebSocket, subscribes to pair's partial-depth stream, and
// emits normalized ExchangeBook snapshots until the connection's retry
// budget is exhausted or ctx is cancelled.
func (a *Adapter) Start(ctx context.Context, pair domain.TradedPair) (<-chan domain.ExchangeBook, error) {
	symbol := strings.ToLower(pair.First + pair.Second)
	url := strings.ReplaceAll(a.urlTemplate, "{symbol}", streamPath(symbol))

	conn, err := a.breaker.Execute(func() (*wsconn.Client, error) {
		c, err := wsconn.New(wsconn.Config{
			URL:            url,
			Name:           "binance-" + symbol,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
			MaxReconnects:  5,
			PingInterval:   30 * time.Second,
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   10 * time.Second,
			BufferSize:     256,
			MaxMessageSize: 1 << 20,
		})
		if err != nil {
			return nil, err
		}
		if err := c.ConnectWithRetry(ctx); err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeSourceUnavailable,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("binance feed for %s", pair.String())))
	}

	out := make(chan domain.ExchangeBook, 16)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); a.seedSnapshot(ctx, symbol, pair, out) }()
	go func() { defer wg.Done(); a.readLoop(ctx, conn, pair, out) }()
	// out is closed only once both writers have returned, so seedSnapshot's
	// one-shot send can never race readLoop's close of the channel.
	go func() { wg.Wait(); close(out) }()

	return out, nil
}

// seedSnapshot fetches a one-shot REST depth snapshot and emits it before
// the WebSocket stream's first diff frame arrives, so a fresh subscriber
// sees a populated book immediately instead of an empty one. Best-effort:
// a snapshot failure is logged and does not fail Start, since the
// WebSocket stream alone is sufficient to maintain the book over time.
func (a *Adapter) seedSnapshot(ctx context.Context, symbol string, pair domain.TradedPair, out chan<- domain.ExchangeBook) {
	snap, err := newSnapshotClient(a.restBaseURL, a.log)
	if err != nil {
		a.log.Warn(ctx, "binance: snapshot client unavailable, skipping seed", "error", err)
		return
	}

	book, err := snap.fetch(ctx, strings.ToUpper(symbol), pair)
	if err != nil {
		a.log.Warn(ctx, "binance: depth snapshot failed, waiting for stream", "error", err)
		return
	}

	select {
	case out <- book:
	case <-ctx.Done():
	}
}

func (a *Adapter) readLoop(ctx context.Context, conn *wsconn.Client, pair domain.TradedPair, out chan<- domain.ExchangeBook) {
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-conn.Messages():
			if !ok {
				return
			}

			var event depthEvent
			if err := json.Unmarshal(raw, &event); err != nil {
				a.log.Debug(ctx, "binance: dropping unparseable frame", "error", err)
				continue
			}

			book := domain.ExchangeBook{
				Exchange:  a.ID(),
				Pair:      pair,
				Bids:      parseLevels(event.Bids),
				Asks:      parseLevels(event.Asks),
				Timestamp: time.Now(),
			}

			select {
			case out <- book:
			case <-ctx.Done():
				return
			}
		}
	}
}
