// Package aggregator wires the order-book aggregation engine's domain,
// app, and infra layers into the application container, following the
// teacher's bounded-context Module pattern (see business/pricing/module.go
// in the original tree for the canonical two-method Module shape this
// mirrors).
package aggregator

import (
	"context"

	"github.com/fd1az/orderbook-aggregator/business/aggregator/app"
	aggdi "github.com/fd1az/orderbook-aggregator/business/aggregator/di"
	"github.com/fd1az/orderbook-aggregator/business/aggregator/domain"
	"github.com/fd1az/orderbook-aggregator/business/aggregator/infra/binance"
	"github.com/fd1az/orderbook-aggregator/business/aggregator/infra/bitstamp"
	"github.com/fd1az/orderbook-aggregator/business/aggregator/infra/broadcast"
	"github.com/fd1az/orderbook-aggregator/internal/config"
	"github.com/fd1az/orderbook-aggregator/internal/di"
	"github.com/fd1az/orderbook-aggregator/internal/logger"
	"github.com/fd1az/orderbook-aggregator/internal/monolith"
)

// Module implements monolith.Module for the aggregator bounded context.
type Module struct{}

// RegisterServices builds the Aggregator Registry and registers it under
// aggdi.RegistryToken. Config and logger are already present on c by the
// time modules register (monolith.New puts them there first), so the
// Registry can be fully constructed here rather than deferred to Startup.
func (m *Module) RegisterServices(c di.Container) error {
	cfg := di.Resolve[*config.Config](c, "config")
	log := di.Resolve[logger.LoggerInterface](c, "logger")

	adapters := buildAdapterFactory(cfg.Exchanges, log)
	registry := app.NewRegistry(log, adapters, func() app.Broadcaster {
		return broadcast.New(log)
	})

	c.Register(aggdi.RegistryToken, registry)
	return nil
}

// Startup has nothing to do: the Registry spawns aggregators lazily on
// first subscription (spec §4.3), so there is no eager work at boot.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	return nil
}

// buildAdapterFactory returns an app.AdapterFactory that constructs one
// Feed per configured exchange source.
func buildAdapterFactory(cfg config.ExchangesConfig, log logger.LoggerInterface) app.AdapterFactory {
	return func(pair domain.TradedPair) []app.Feed {
		var feeds []app.Feed
		for _, src := range cfg.Sources {
			switch src.Name {
			case "Binance":
				feeds = append(feeds, binance.New(binance.Config{
					URLTemplate:    src.URLTemplate,
					InitialBackoff: src.InitialBackoff,
					MaxBackoff:     src.MaxBackoff,
					MaxReconnects:  src.MaxReconnects,
				}, log))
			case "Bitstamp":
				feeds = append(feeds, bitstamp.New(bitstamp.Config{URL: src.URLTemplate}, log))
			default:
				log.Warn(context.Background(), "unknown exchange configured, skipping", "exchange", src.Name)
			}
		}
		return feeds
	}
}
