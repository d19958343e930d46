package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/fd1az/orderbook-aggregator/business/aggregator/infra/broadcast"
	"github.com/fd1az/orderbook-aggregator/internal/logger"
	"github.com/shopspring/decimal"
)

func testLogger() logger.LoggerInterface {
	return logger.New(&bytes.Buffer{}, logger.LevelError, "test", nil)
}

// fakeFeed is a Feed whose stream is driven directly by the test. If
// startErr is set, Start fails instead of returning a stream.
type fakeFeed struct {
	id       string
	stream   chan domain.ExchangeBook
	startErr error
}

func newFakeFeed(id string) *fakeFeed {
	return &fakeFeed{id: id, stream: make(chan domain.ExchangeBook, 4)}
}

func newFailingFeed(id string, err error) *fakeFeed {
	return &fakeFeed{id: id, startErr: err}
}

func (f *fakeFeed) ID() string { return f.id }

func (f *fakeFeed) Start(ctx context.Context, pair domain.TradedPair) (<-chan domain.ExchangeBook, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.stream, nil
}

func lvl(price string) domain.PriceLevel {
	return domain.PriceLevel{Price: decimal.RequireFromString(price), Amount: decimal.RequireFromString("1")}
}

func waitForState(t *testing.T, h *Handle, want State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %v, got %v", want, h.State())
}

func recvSummary(t *testing.T, ch <-chan domain.Summary) domain.Summary {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			t.Fatal("channel closed while waiting for a summary")
		}
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for summary")
	}
	return domain.Summary{}
}

func TestAggregatorPublishesFirstSummaryAfterFirstSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pair := domain.TradedPair{First: "ETH", Second: "BTC"}
	feed := newFakeFeed("Binance")
	bc := broadcast.New(testLogger())

	h := Spawn(ctx, pair, []Feed{feed}, testLogger(), bc)
	sub, unsub := h.Subscribe()
	defer unsub()

	feed.stream <- domain.ExchangeBook{Exchange: "Binance", Bids: []domain.PriceLevel{lvl("100")}, Asks: []domain.PriceLevel{lvl("101")}}

	summary := recvSummary(t, sub)
	if len(summary.Bids) != 1 || summary.Bids[0].Exchange != "Binance" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if h.State() != StateRunning {
		t.Fatalf("expected state running, got %v", h.State())
	}
}

func TestAggregatorSourceDropKeepsRemainingSources(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pair := domain.TradedPair{First: "ETH", Second: "BTC"}
	a := newFakeFeed("A")
	b := newFakeFeed("B")
	bc := broadcast.New(testLogger())

	h := Spawn(ctx, pair, []Feed{a, b}, testLogger(), bc)
	sub, unsub := h.Subscribe()
	defer unsub()

	a.stream <- domain.ExchangeBook{Exchange: "A", Bids: []domain.PriceLevel{lvl("100")}, Asks: []domain.PriceLevel{lvl("101")}}
	recvSummary(t, sub)

	b.stream <- domain.ExchangeBook{Exchange: "B", Bids: []domain.PriceLevel{lvl("99")}, Asks: []domain.PriceLevel{lvl("102")}}
	recvSummary(t, sub)

	// A's drop publishes nothing by itself; B's next snapshot yields the
	// first summary without A. A's close and B's snapshot race into the
	// merge loop, so B keeps sending until the drop has been processed.
	close(a.stream)
	deadline := time.Now().Add(time.Second)
	for {
		b.stream <- domain.ExchangeBook{Exchange: "B", Bids: []domain.PriceLevel{lvl("99")}, Asks: []domain.PriceLevel{lvl("102")}}
		summary := recvSummary(t, sub)
		if len(summary.Bids) == 1 && summary.Bids[0].Exchange == "B" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected only B's levels after A drops, got %+v", summary)
		}
	}
}

func TestAggregatorTerminatesWhenAllSourcesDrop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pair := domain.TradedPair{First: "ETH", Second: "BTC"}
	a := newFakeFeed("A")
	bc := broadcast.New(testLogger())

	h := Spawn(ctx, pair, []Feed{a}, testLogger(), bc)
	sub, unsub := h.Subscribe()
	defer unsub()

	a.stream <- domain.ExchangeBook{Exchange: "A", Bids: []domain.PriceLevel{lvl("100")}, Asks: []domain.PriceLevel{lvl("101")}}
	recvSummary(t, sub)

	close(a.stream)

	select {
	case _, ok := <-sub:
		if ok {
			t.Fatal("expected end-of-stream after all sources terminate")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for end-of-stream")
	}

	waitForState(t, h, StateTerminated)
}

func TestAggregatorFailsWhenEverySourceFailsToStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pair := domain.TradedPair{First: "ETH", Second: "BTC"}
	a := newFailingFeed("A", errors.New("connection refused"))
	b := newFailingFeed("B", errors.New("connection refused"))
	bc := broadcast.New(testLogger())

	h := Spawn(ctx, pair, []Feed{a, b}, testLogger(), bc)
	sub, unsub := h.Subscribe()
	defer unsub()

	select {
	case _, ok := <-sub:
		if ok {
			t.Fatal("expected end-of-stream, no source ever connected")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for end-of-stream")
	}

	waitForState(t, h, StateFailed)
}

func TestAggregatorRunsOnPartialStartFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pair := domain.TradedPair{First: "ETH", Second: "BTC"}
	ok := newFakeFeed("A")
	failing := newFailingFeed("B", errors.New("connection refused"))
	bc := broadcast.New(testLogger())

	h := Spawn(ctx, pair, []Feed{ok, failing}, testLogger(), bc)
	sub, unsub := h.Subscribe()
	defer unsub()

	ok.stream <- domain.ExchangeBook{Exchange: "A", Bids: []domain.PriceLevel{lvl("100")}, Asks: []domain.PriceLevel{lvl("101")}}
	summary := recvSummary(t, sub)
	if len(summary.Bids) != 1 || summary.Bids[0].Exchange != "A" {
		t.Fatalf("expected A's levels despite B failing to start, got %+v", summary)
	}
	if h.State() != StateRunning {
		t.Fatalf("expected state running, got %v", h.State())
	}
}

func TestSubscriberTerminationDoesNotAffectOthers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pair := domain.TradedPair{First: "ETH", Second: "BTC"}
	feed := newFakeFeed("Binance")
	bc := broadcast.New(testLogger())

	h := Spawn(ctx, pair, []Feed{feed}, testLogger(), bc)
	sub1, unsub1 := h.Subscribe()
	sub2, unsub2 := h.Subscribe()
	defer unsub2()

	unsub1()

	feed.stream <- domain.ExchangeBook{Exchange: "Binance", Bids: []domain.PriceLevel{lvl("100")}, Asks: []domain.PriceLevel{lvl("101")}}

	recvSummary(t, sub2)

	if _, ok := <-sub1; ok {
		t.Fatal("expected sub1's channel to be closed after unsubscribe")
	}
}
