// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Exchanges ExchangesConfig `mapstructure:"exchanges"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ServerConfig holds the gRPC server's process surface (spec §6 "Process surface").
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ExchangeConfig describes one Exchange Feed Adapter's connection details
// (spec §6 "Adapter configuration"): a URL template with a `{symbol}`
// placeholder and the exchange's own pair-symbol casing convention.
type ExchangeConfig struct {
	Name           string        `mapstructure:"name"`
	URLTemplate    string        `mapstructure:"url_template"`
	SymbolCase     string        `mapstructure:"symbol_case"` // "lower" or "upper"
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
}

// Symbol renders first+second through this exchange's encoding convention,
// e.g. ETH+BTC -> "ethbtc" for Binance, "ethbtc" for Bitstamp.
func (c ExchangeConfig) Symbol(first, second string) string {
	pair := first + second
	if strings.EqualFold(c.SymbolCase, "upper") {
		return strings.ToUpper(pair)
	}
	return strings.ToLower(pair)
}

// URL renders this exchange's WebSocket URL for the given pair.
func (c ExchangeConfig) URL(first, second string) string {
	return strings.ReplaceAll(c.URLTemplate, "{symbol}", c.Symbol(first, second))
}

// ExchangesConfig holds the set of configured Exchange Feed Adapters.
type ExchangesConfig struct {
	Sources []ExchangeConfig `mapstructure:"sources"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ORDERBOOK")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars and defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "ORDERBOOK_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ORDERBOOK_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ORDERBOOK_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("server.port", "ORDERBOOK_SERVER_PORT", "PORT")

	v.BindEnv("telemetry.enabled", "ORDERBOOK_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ORDERBOOK_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ORDERBOOK_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "orderbook-aggregator")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 3030)

	v.SetDefault("exchanges.sources", []map[string]any{
		{
			"name":            "Binance",
			"url_template":    "wss://stream.binance.com:9443/ws/{symbol}",
			"symbol_case":     "lower",
			"initial_backoff": "1s",
			"max_backoff":     "30s",
			"max_reconnects":  5,
		},
		{
			"name":            "Bitstamp",
			"url_template":    "wss://ws.bitstamp.net",
			"symbol_case":     "lower",
			"initial_backoff": "1s",
			"max_backoff":     "30s",
			"max_reconnects":  5,
		},
	})

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "orderbook-aggregator")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if len(c.Exchanges.Sources) == 0 {
		return fmt.Errorf("exchanges.sources cannot be empty")
	}
	for _, ex := range c.Exchanges.Sources {
		if ex.Name == "" {
			return fmt.Errorf("exchanges.sources: name is required")
		}
		if ex.URLTemplate == "" {
			return fmt.Errorf("exchanges.sources[%s]: url_template is required", ex.Name)
		}
	}
	return nil
}
