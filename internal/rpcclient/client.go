// Package rpcclient implements the spec §6 client-facing library contract:
// connect_to_summary_service. It dials the OrderbookAggregator RPC with a
// bounded number of attempts and, once connected, streams Summary values
// without reconnecting on transport errors — the caller decides whether to
// call Connect again.
package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	orderbookv1 "github.com/fd1az/orderbook-aggregator/api/orderbook/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Settings configures a single Connect call.
type Settings struct {
	ServerAddress        string
	TradedPair           orderbookv1.TradedPair
	MaxAttempts          int
	DelayBetweenAttempts time.Duration
}

// Result carries either a received Summary or a terminal Status error, one
// item per stream event, mirroring spec §6's Result<Summary, Status>.
type Result struct {
	Summary *orderbookv1.Summary
	Err     error
}

// Connect dials settings.ServerAddress, retrying up to MaxAttempts with
// DelayBetweenAttempts between tries, then subscribes to the BookSummary
// stream for settings.TradedPair. The returned channel is closed once the
// stream ends, whether cleanly or on error; the final item sent before
// closing carries the error, if any. Connect itself does not retry once the
// stream has been established — a post-connection transport failure is
// surfaced as a single error Result, per spec §6.
func Connect(ctx context.Context, settings Settings) (<-chan Result, error) {
	if settings.MaxAttempts < 1 {
		settings.MaxAttempts = 1
	}

	conn, err := dialWithRetry(ctx, settings)
	if err != nil {
		return nil, err
	}

	client := orderbookv1.NewOrderbookAggregatorClient(conn)
	stream, err := client.BookSummary(ctx, &orderbookv1.BookSummaryRequest{TradedPair: settings.TradedPair},
		grpc.CallContentSubtype("json"))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rpcclient: BookSummary call failed: %w", err)
	}

	results := make(chan Result)
	go func() {
		defer close(results)
		defer conn.Close()
		for {
			summary, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					results <- Result{Err: err}
				}
				return
			}
			select {
			case results <- Result{Summary: summary}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results, nil
}

// dialWithRetry attempts grpc.NewClient up to settings.MaxAttempts times,
// sleeping settings.DelayBetweenAttempts between tries. grpc.NewClient
// itself connects lazily, so a failing attempt here means settings produced
// an invalid target, not a down server; the real liveness check happens on
// the first RPC below.
func dialWithRetry(ctx context.Context, settings Settings) (*grpc.ClientConn, error) {
	var lastErr error
	for attempt := 1; attempt <= settings.MaxAttempts; attempt++ {
		conn, err := grpc.NewClient(settings.ServerAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err == nil {
			return conn, nil
		}
		lastErr = err

		if attempt == settings.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(settings.DelayBetweenAttempts):
		}
	}
	return nil, fmt.Errorf("rpcclient: failed to connect to %s after %d attempts: %w", settings.ServerAddress, settings.MaxAttempts, lastErr)
}
