package bitstamp

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
)

func testLogger() logger.LoggerInterface {
	return logger.New(&bytes.Buffer{}, logger.LevelError, "test", nil)
}

func mockBitstampServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		ctx := context.Background()

		// Read (and discard) the client's subscribe frame.
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}

		ack, _ := json.Marshal(map[string]any{"event": "bts:subscription_succeeded"})
		if err := conn.Write(ctx, websocket.MessageText, ack); err != nil {
			return
		}

		data, _ := json.Marshal(orderBookEvent{
			Event: "data",
			Data: orderBookEventData{
				Bids: [][]string{{"50000.00", "0.5"}},
				Asks: [][]string{{"50010.00", "0.25"}, {"50020.00", "0"}},
			},
		})
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			return
		}

		time.Sleep(200 * time.Millisecond)
	}))
}

func TestAdapterStartSkipsAckAndEmitsBook(t *testing.T) {
	server := mockBitstampServer(t)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	adapter := New(Config{URL: wsURL}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := adapter.Start(ctx, domain.TradedPair{First: "BTC", Second: "USD"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case book, ok := <-stream:
		if !ok {
			t.Fatal("stream closed before any book arrived")
		}
		if book.Exchange != "Bitstamp" {
			t.Fatalf("expected exchange tag Bitstamp, got %q", book.Exchange)
		}
		if len(book.Bids) != 1 || len(book.Asks) != 1 {
			t.Fatalf("unexpected book shape: %+v", book)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for normalized book")
	}
}

func TestChannelFor(t *testing.T) {
	if got := channelFor("ethbtc"); got != "order_book_ethbtc" {
		t.Fatalf("unexpected channel name: %q", got)
	}
}
