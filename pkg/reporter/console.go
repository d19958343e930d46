// Package reporter renders BookSummary stream output for the CLI client,
// adapted from the teacher's ConsoleReporter (business/arbitrage/infra
// in the original tree): same io.Writer-to-os.Stdout shape, same
// RFC3339 timestamp-on-status-change style, no TUI.
package reporter

import (
	"fmt"
	"io"
	"os"
	"time"

	orderbookv1 "github.com/fd1az/orderbook-aggregator/api/orderbook/v1"
)

// Console renders a start banner, Summary values and stream errors to an
// io.Writer, defaulting to os.Stdout.
type Console struct {
	out io.Writer
}

// NewConsole creates a Console writing to os.Stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// Start prints the banner shown once at CLI startup.
func (r *Console) Start(pair orderbookv1.TradedPair) {
	fmt.Fprintf(r.out, "Order Book Aggregator Client\n")
	fmt.Fprintf(r.out, "============================\n")
	fmt.Fprintf(r.out, "pair: %s/%s\n\n", pair.First, pair.Second)
}

// Report prints one received Summary.
func (r *Console) Report(summary *orderbookv1.Summary) {
	fmt.Fprintf(r.out, "[%s] spread=%s\n", time.Now().Format(time.RFC3339), formatSpread(summary.Spread))
	fmt.Fprintln(r.out, "  bids:")
	for _, lvl := range summary.Bids {
		fmt.Fprintf(r.out, "    %-10s %12.8f @ %.8f\n", lvl.Exchange, lvl.Amount, lvl.Price)
	}
	fmt.Fprintln(r.out, "  asks:")
	for _, lvl := range summary.Asks {
		fmt.Fprintf(r.out, "    %-10s %12.8f @ %.8f\n", lvl.Exchange, lvl.Amount, lvl.Price)
	}
	fmt.Fprintln(r.out)
}

// ReportError prints a terminal stream error.
func (r *Console) ReportError(err error) {
	fmt.Fprintf(r.out, "[%s] stream error: %v\n", time.Now().Format(time.RFC3339), err)
}

func formatSpread(spread orderbookv1.WireFloat64) string {
	f := float64(spread)
	if f != f { // NaN: spread undefined when one side of the book is empty.
		return "undefined"
	}
	return fmt.Sprintf("%.8f", f)
}
