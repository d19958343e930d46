package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, "orderbook-aggregator", nil)

	log.Info(context.Background(), "should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected info log to be filtered at warn level, got: %s", buf.String())
	}

	log.Warn(context.Background(), "should appear", "pair", "ETH-USD")
	if buf.Len() == 0 {
		t.Fatal("expected warn log to be written")
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected JSON log line, got error: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "should appear" {
		t.Fatalf("unexpected msg field: %v", entry["msg"])
	}
	if entry["service"] != "orderbook-aggregator" {
		t.Fatalf("expected service field to be set, got: %v", entry["service"])
	}
	if entry["pair"] != "ETH-USD" {
		t.Fatalf("expected pair field to be set, got: %v", entry["pair"])
	}
}

func TestLoggerWithAddsStaticFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo, "orderbook-aggregator", []any{"component", "registry"})

	scoped := log.With("pair", "BTC-USD")
	scoped.Info(context.Background(), "aggregator started")

	out := buf.String()
	if !strings.Contains(out, `"component":"registry"`) {
		t.Fatalf("expected base field to survive With(), got: %s", out)
	}
	if !strings.Contains(out, `"pair":"BTC-USD"`) {
		t.Fatalf("expected scoped field to be present, got: %s", out)
	}
}
