// Package rpcserver hosts the OrderbookAggregator gRPC service (spec §6)
// and implements the Subscription Fan-Out (spec §4.4): on each BookSummary
// call it validates the request, obtains a handle from the Aggregator
// Registry, subscribes, and forwards summaries to the RPC stream until
// either side closes.
package rpcserver

import (
	"context"
	"errors"
	"fmt"
	"math"

	orderbookv1 "github.com/fd1az/orderbook-aggregator/api/orderbook/v1"
	"github.com/fd1az/orderbook-aggregator/business/aggregator/app"
	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/fd1az/orderbook-aggregator/internal/apperror"
	"github.com/fd1az/orderbook-aggregator/internal/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server implements orderbookv1.OrderbookAggregatorServer.
type Server struct {
	registry *app.Registry
	log      logger.LoggerInterface
}

// New creates a Server backed by registry.
func New(registry *app.Registry, log logger.LoggerInterface) *Server {
	return &Server{registry: registry, log: log}
}

// BookSummary validates req, resolves the pair's Aggregator through the
// Registry, and streams summaries until the subscriber disconnects, the
// aggregator terminates (all sources gone), the broadcaster drops the
// subscriber for lagging, or the subscriber's transport fails.
func (s *Server) BookSummary(req *orderbookv1.BookSummaryRequest, stream orderbookv1.OrderbookAggregator_BookSummaryServer) error {
	pair, err := validatePair(req)
	if err != nil {
		return statusFromAppError(err)
	}

	ctx := stream.Context()

	// The aggregator is shared by every subscriber of the pair, so it runs
	// on a background context rather than this RPC's.
	handle, err := s.registry.GetOrStart(context.Background(), pair)
	if err != nil {
		return statusFromAppError(err)
	}

	summaries, unsubscribe := handle.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case summary, ok := <-summaries:
			if !ok {
				if handle.State() == app.StateFailed {
					// Every configured source failed to ever connect
					// (spec §4.3 NoSourcesAvailable) — this only surfaces
					// here rather than at GetOrStart time because Spawn
					// never blocks on a source's connect-with-retry budget.
					return statusFromAppError(apperror.New(apperror.CodeNoSourcesAvailable,
						apperror.WithContext(fmt.Sprintf("no exchange source connected for %s", pair))))
				}
				if handle.State() != app.StateTerminated {
					// The aggregator is still live, so the broadcaster
					// closed this subscription for lagging.
					return statusFromAppError(apperror.New(apperror.CodeSubscriberLagging,
						apperror.WithContext(fmt.Sprintf("subscriber for %s fell behind", pair))))
				}
				// Aggregator terminated: all sources dropped after
				// connecting (spec §4.2).
				return nil
			}
			if err := stream.Send(toWire(summary)); err != nil {
				s.log.Warn(ctx, "subscriber transport failed", "pair", pair.String(), "error", err)
				return statusFromAppError(apperror.New(apperror.CodeTransportError, apperror.WithCause(err)))
			}
		}
	}
}

// validatePair enforces spec §7 InvalidRequest: empty pair symbols are
// rejected before ever touching the Registry.
func validatePair(req *orderbookv1.BookSummaryRequest) (domain.TradedPair, error) {
	if req == nil || req.TradedPair.First == "" || req.TradedPair.Second == "" {
		return domain.TradedPair{}, apperror.New(apperror.CodeInvalidRequest,
			apperror.WithContext("traded_pair.first and traded_pair.second are required"))
	}
	return domain.TradedPair{First: req.TradedPair.First, Second: req.TradedPair.Second}, nil
}

func toWire(summary domain.Summary) *orderbookv1.Summary {
	spread := orderbookv1.WireFloat64(math.NaN())
	if summary.Spread != nil {
		f, _ := summary.Spread.Float64()
		spread = orderbookv1.WireFloat64(f)
	}

	return &orderbookv1.Summary{
		Spread: spread,
		Bids:   toWireLevels(summary.Bids),
		Asks:   toWireLevels(summary.Asks),
	}
}

func toWireLevels(levels []domain.ExchangeLevel) []orderbookv1.Level {
	out := make([]orderbookv1.Level, len(levels))
	for i, lvl := range levels {
		price, _ := lvl.Price.Float64()
		amount, _ := lvl.Amount.Float64()
		out[i] = orderbookv1.Level{Exchange: lvl.Exchange, Price: price, Amount: amount}
	}
	return out
}

// statusFromAppError maps the spec §7 error taxonomy onto gRPC status
// codes.
func statusFromAppError(err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return status.Error(codes.Internal, err.Error())
	}

	switch appErr.Code {
	case apperror.CodeNoSourcesAvailable, apperror.CodeSourceUnavailable:
		return status.Error(codes.Unavailable, appErr.Message)
	case apperror.CodeInvalidRequest:
		return status.Error(codes.InvalidArgument, appErr.Message)
	case apperror.CodeTransportError:
		return status.Error(codes.Aborted, appErr.Message)
	case apperror.CodeSubscriberLagging:
		return status.Error(codes.ResourceExhausted, appErr.Message)
	default:
		return status.Error(codes.Internal, appErr.Message)
	}
}
