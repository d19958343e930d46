package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/fd1az/orderbook-aggregator/internal/httpclient"
	"github.com/fd1az/orderbook-aggregator/internal/logger"
)

// baseRESTURL is Binance's public REST API, used only for the depth
// snapshot below — the live book is always maintained from the WebSocket
// stream.
const baseRESTURL = "https://api.binance.com"

const depthEndpoint = "/api/v3/depth"

// depthResponse is the REST depth snapshot's response shape.
type depthResponse struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// snapshotClient fetches a one-shot REST depth snapshot so a fresh
// subscriber gets a populated book immediately rather than waiting for the
// WebSocket stream's first diff frame to arrive.
type snapshotClient struct {
	client httpclient.Client
	log    logger.LoggerInterface
	tracer trace.Tracer
}

func newSnapshotClient(baseURL string, log logger.LoggerInterface) (*snapshotClient, error) {
	if baseURL == "" {
		baseURL = baseRESTURL
	}
	tracer := otel.Tracer("github.com/fd1az/orderbook-aggregator/business/aggregator/infra/binance")

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(5*time.Second),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
	)
	if err != nil {
		return nil, fmt.Errorf("binance: failed to build snapshot client: %w", err)
	}

	return &snapshotClient{client: client, log: log, tracer: tracer}, nil
}

// fetch pulls a Depth snapshot for symbol, truncated to domain.Depth levels.
func (c *snapshotClient) fetch(ctx context.Context, symbol string, pair domain.TradedPair) (domain.ExchangeBook, error) {
	ctx, span := c.tracer.Start(ctx, "binance.http.get_depth",
		trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	var result depthResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "depth"), httpclient.NewLabel("symbol", symbol)),
	).
		SetQueryParam("symbol", symbol).
		SetQueryParam("limit", strconv.Itoa(domain.Depth)).
		SetResult(&result).
		Get(ctx, depthEndpoint)
	if err != nil {
		span.RecordError(err)
		return domain.ExchangeBook{}, fmt.Errorf("binance: depth snapshot request failed: %w", err)
	}
	if resp.IsError() {
		return domain.ExchangeBook{}, fmt.Errorf("binance: depth snapshot returned HTTP %d: %s", resp.StatusCode, resp.String())
	}

	c.log.Debug(ctx, "fetched binance depth snapshot", "symbol", symbol, "bids", len(result.Bids), "asks", len(result.Asks))

	return domain.ExchangeBook{
		Exchange:  "Binance",
		Pair:      pair,
		Bids:      parseLevels(result.Bids),
		Asks:      parseLevels(result.Asks),
		Timestamp: time.Now(),
	}, nil
}
