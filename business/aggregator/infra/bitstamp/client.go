// Package bitstamp implements the spec §4.1 Exchange Feed Adapter for
// Bitstamp's Pusher-style WebSocket channel. Unlike Binance's
// combined-stream URL, Bitstamp multiplexes every channel over one
// WebSocket connection and a subscribe frame sent after connect — a
// different wire shape than Binance's while sharing the same app.Feed
// contract and wsconn transport, demonstrating the spec §9 "source
// polymorphism" design note.
package bitstamp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/fd1az/orderbook-aggregator/internal/apperror"
	"github.com/fd1az/orderbook-aggregator/internal/logger"
	"github.com/fd1az/orderbook-aggregator/internal/wsconn"
	"github.com/sony/gobreaker/v2"
)

// Adapter is the Bitstamp Feed implementation (app.Feed).
type Adapter struct {
	url     string
	log     logger.LoggerInterface
	breaker *gobreaker.CircuitBreaker[*wsconn.Client]
}

// Config configures a Bitstamp Adapter.
type Config struct {
	// URL is Bitstamp's single multiplexed WebSocket endpoint, e.g.
	// "wss://ws.bitstamp.net" — it carries no per-pair placeholder.
	URL string
}

// New creates a Bitstamp Adapter with the same bounded-retry circuit
// breaker policy as the Binance adapter (spec §9(a)).
func New(cfg Config, log logger.LoggerInterface) *Adapter {
	breakerSettings := gobreaker.Settings{
		Name:        "bitstamp-feed",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Adapter{
		url:     cfg.URL,
		log:     log,
		breaker: gobreaker.NewCircuitBreaker[*wsconn.Client](breakerSettings),
	}
}

// ID is the exchange identifier tagged onto every level this adapter emits.
func (a *Adapter) ID() string { return "Bitstamp" }

// Start connects, sends the order-book channel subscribe frame for pair,
// and emits normalized ExchangeBook snapshots from subsequent data frames.
func (a *Adapter) Start(ctx context.Context, pair domain.TradedPair) (<-chan domain.ExchangeBook, error) {
	symbol := strings.ToLower(pair.First + pair.Second)
	channel := channelFor(symbol)

	conn, err := a.breaker.Execute(func() (*wsconn.Client, error) {
		c, err := wsconn.New(wsconn.Config{
			URL:            a.url,
			Name:           "bitstamp-" + symbol,
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
		if err := c.SendJSON(ctx, subscribeFrame{Event: "bts:subscribe", Data: subscribeFrameData{Channel: channel}}); err != nil {
			c.Close()
			return nil, apperror.New(apperror.CodeHandshakeFailed,
				apperror.WithCause(fmt.Errorf("bitstamp: subscribe handshake failed: %w", err)))
		}
		return c, nil
	})
	if err != nil {
		code := apperror.CodeSourceUnavailable
		if apperror.GetCode(err) == apperror.CodeHandshakeFailed {
			code = apperror.CodeHandshakeFailed
		}
		return nil, apperror.New(code,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("bitstamp feed for %s", pair.String())))
	}

	out := make(chan domain.ExchangeBook, 16)
	go a.readLoop(ctx, conn, pair, out)

	return out, nil
}

func (a *Adapter) readLoop(ctx context.Context, conn *wsconn.Client, pair domain.TradedPair, out chan<- domain.ExchangeBook) {
	defer close(out)
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-conn.Messages():
			if !ok {
				return
			}

			var envelope struct {
				Event string `json:"event"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				a.log.Debug(ctx, "bitstamp: dropping unparseable frame", "error", err)
				continue
			}

			switch {
			case isSubscriptionAck(envelope.Event):
				continue
			case isOrderBookData(envelope.Event):
				var event orderBookEvent
				if err := json.Unmarshal(raw, &event); err != nil {
					a.log.Debug(ctx, "bitstamp: dropping unparseable order book frame", "error", err)
					continue
				}

				book := domain.ExchangeBook{
					Exchange:  a.ID(),
					Pair:      pair,
					Bids:      parseLevels(event.Data.Bids),
					Asks:      parseLevels(event.Data.Asks),
					Timestamp: time.Now(),
				}

				select {
				case out <- book:
				case <-ctx.Done():
					return
				}
			default:
				// Unknown event type (e.g. bts:error) — log and continue,
				// never terminate the stream on an unrecognized frame.
				a.log.Debug(ctx, "bitstamp: ignoring unhandled event", "event", envelope.Event)
			}
		}
	}
}
