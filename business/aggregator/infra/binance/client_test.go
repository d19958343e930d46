package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/fd1az/orderbook-aggregator/internal/logger"
	"github.com/shopspring/decimal"
)

func testLogger() logger.LoggerInterface {
	return logger.New(&bytes.Buffer{}, logger.LevelError, "test", nil)
}

func mockDepthServer(t *testing.T, frames ...depthEvent) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		ctx := context.Background()
		for _, frame := range frames {
			data, _ := json.Marshal(frame)
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	}))
}

// mockRESTServer stands in for Binance's depth REST endpoint so the
// snapshot-seed goroutine started by Adapter.Start never reaches the
// network during tests.
func mockRESTServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestAdapterStartEmitsNormalizedBook(t *testing.T) {
	server := mockDepthServer(t, depthEvent{
		Bids: [][]string{{"100.5", "1.0"}, {"100.0", "2.0"}, {"99.0", "0"}},
		Asks: [][]string{{"101.0", "3.0"}},
	})
	defer server.Close()

	rest := mockRESTServer(t, http.StatusNotFound, `{}`)
	defer rest.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/{symbol}"
	adapter := New(Config{URLTemplate: wsURL, RESTBaseURL: rest.URL}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := adapter.Start(ctx, domain.TradedPair{First: "ETH", Second: "BTC"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case book, ok := <-stream:
		if !ok {
			t.Fatal("stream closed before any book arrived")
		}
		if book.Exchange != "Binance" {
			t.Fatalf("expected exchange tag Binance, got %q", book.Exchange)
		}
		if len(book.Bids) != 2 {
			t.Fatalf("expected zero-amount bid to be dropped, got %d bids", len(book.Bids))
		}
		if len(book.Asks) != 1 {
			t.Fatalf("expected 1 ask, got %d", len(book.Asks))
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for normalized book")
	}
}

func TestAdapterStartSeedsFromRESTSnapshotBeforeFirstFrame(t *testing.T) {
	// The WebSocket server sends nothing for a while, so the first book to
	// arrive on the stream must be the REST snapshot seed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	rest := mockRESTServer(t, http.StatusOK, `{"lastUpdateId":1,"bids":[["50.0","2.0"]],"asks":[["51.0","1.0"]]}`)
	defer rest.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/{symbol}"
	adapter := New(Config{URLTemplate: wsURL, RESTBaseURL: rest.URL}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := adapter.Start(ctx, domain.TradedPair{First: "ETH", Second: "BTC"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case book, ok := <-stream:
		if !ok {
			t.Fatal("stream closed before snapshot seed arrived")
		}
		if len(book.Bids) != 1 || !book.Bids[0].Price.Equal(decimal.RequireFromString("50.0")) {
			t.Fatalf("expected seeded snapshot book, got %+v", book)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for seeded snapshot")
	}
}

func TestAdapterStartDoesNotPanicWhenWSClosesBeforeSlowSnapshot(t *testing.T) {
	// The WebSocket drops immediately while the REST snapshot is still in
	// flight: readLoop returns well before seedSnapshot does. out must not
	// be closed until both writers are done, or seedSnapshot's send would
	// panic on a closed channel.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer server.Close()

	restDone := make(chan struct{})
	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"lastUpdateId":1,"bids":[["50.0","2.0"]],"asks":[["51.0","1.0"]]}`))
		close(restDone)
	}))
	defer rest.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/{symbol}"
	adapter := New(Config{URLTemplate: wsURL, RESTBaseURL: rest.URL}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := adapter.Start(ctx, domain.TradedPair{First: "ETH", Second: "BTC"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-restDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for REST snapshot handler to run")
	}

	var received []domain.ExchangeBook
	deadline := time.After(3 * time.Second)
drain:
	for {
		select {
		case book, ok := <-stream:
			if !ok {
				break drain
			}
			received = append(received, book)
		case <-deadline:
			t.Fatal("timed out draining stream; channel was never closed")
		}
	}

	if len(received) != 1 {
		t.Fatalf("expected exactly the seeded snapshot book, got %d books: %+v", len(received), received)
	}
}

func TestParseLevelsDropsMalformedAndNonPositive(t *testing.T) {
	levels := parseLevels([][]string{
		{"100", "1"},
		{"not-a-number", "1"},
		{"101", "0"},
		{"102", "-1"},
		{"103"},
	})

	if len(levels) != 1 {
		t.Fatalf("expected exactly one valid level, got %d: %+v", len(levels), levels)
	}
}

func TestParseLevelsTruncatesToDepth(t *testing.T) {
	raw := make([][]string, 0, 15)
	for i := 0; i < 15; i++ {
		raw = append(raw, []string{"100", "1"})
	}
	levels := parseLevels(raw)
	if len(levels) != domain.Depth {
		t.Fatalf("expected truncation to %d, got %d", domain.Depth, len(levels))
	}
}

func TestStreamPath(t *testing.T) {
	if got := streamPath("ethbtc"); got != "ethbtc@depth10@100ms" {
		t.Fatalf("unexpected stream path: %q", got)
	}
}
