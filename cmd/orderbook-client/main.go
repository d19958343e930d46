// Package main is the order book aggregator CLI client (spec §6):
// `orderbook-client <server_url> <first_symbol> <second_symbol>`.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	orderbookv1 "github.com/fd1az/orderbook-aggregator/api/orderbook/v1"
	"github.com/fd1az/orderbook-aggregator/internal/rpcclient"
	"github.com/fd1az/orderbook-aggregator/pkg/reporter"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "usage: %s <server_url> <first_symbol> <second_symbol>\n", os.Args[0])
		os.Exit(2)
	}

	serverURL := os.Args[1]
	pair := orderbookv1.TradedPair{First: os.Args[2], Second: os.Args[3]}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, serverURL, pair); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, serverURL string, pair orderbookv1.TradedPair) error {
	console := reporter.NewConsole()
	console.Start(pair)

	results, err := rpcclient.Connect(ctx, rpcclient.Settings{
		ServerAddress:        serverURL,
		TradedPair:           pair,
		MaxAttempts:          5,
		DelayBetweenAttempts: 2 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", serverURL, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case res, ok := <-results:
			if !ok {
				return nil
			}
			if res.Err != nil {
				console.ReportError(res.Err)
				return res.Err
			}
			console.Report(res.Summary)
		}
	}
}
