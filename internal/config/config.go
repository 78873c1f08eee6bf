// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultUSDSellAmount is the probe size used when neither the pair nor the
// chain configures one.
const DefaultUSDSellAmount = 10.0

// knownProviders is the closed set of quote provider identifiers.
var knownProviders = map[string]bool{
	"zeroex":    true,
	"oneinch":   true,
	"openocean": true,
	"cowswap":   true,
}

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Chains    []ChainConfig   `mapstructure:"chains"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ScannerConfig holds scan loop settings.
type ScannerConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	TopN           int           `mapstructure:"top_n"`
	OutputDir      string        `mapstructure:"output_dir"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// PricingConfig holds USD price lookup settings.
type PricingConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// ProviderConfig holds one quote provider's settings. Endpoints maps chain id
// to base URL for providers with chain-specific hosts; a chain absent from
// the map is unsupported by the provider. BaseURL is used by providers that
// address the chain inside the request path instead.
type ProviderConfig struct {
	BaseURL           string            `mapstructure:"base_url"`
	Endpoints         map[string]string `mapstructure:"endpoints"`
	APIKey            string            `mapstructure:"api_key"`
	RequestsPerMinute int               `mapstructure:"requests_per_minute"`
}

// Endpoint returns the provider's base URL for a chain id, empty when the
// chain is not configured.
func (p ProviderConfig) Endpoint(chainID int64) string {
	return p.Endpoints[strconv.FormatInt(chainID, 10)]
}

// ProvidersConfig holds per-provider settings keyed by provider id.
type ProvidersConfig struct {
	ZeroEx    ProviderConfig `mapstructure:"zeroex"`
	OneInch   ProviderConfig `mapstructure:"oneinch"`
	OpenOcean ProviderConfig `mapstructure:"openocean"`
	CowSwap   ProviderConfig `mapstructure:"cowswap"`
}

// ChainConfig holds one blockchain's scan settings.
type ChainConfig struct {
	ID                   int64        `mapstructure:"id"`
	Name                 string       `mapstructure:"name"`
	Providers            []string     `mapstructure:"providers"`
	DefaultUSDSellAmount float64      `mapstructure:"default_usd_sell_amount"`
	Pairs                []PairConfig `mapstructure:"pairs"`
}

// DefaultUSDSellAmountDecimal returns the chain's USD probe size, falling
// back to the global default.
func (c *ChainConfig) DefaultUSDSellAmountDecimal() decimal.Decimal {
	if c.DefaultUSDSellAmount > 0 {
		return decimal.NewFromFloat(c.DefaultUSDSellAmount)
	}
	return decimal.NewFromFloat(DefaultUSDSellAmount)
}

// PairConfig holds one token pair's scan settings.
type PairConfig struct {
	Name            string  `mapstructure:"name"`
	FromSymbol      string  `mapstructure:"from_symbol"`
	ToSymbol        string  `mapstructure:"to_symbol"`
	FromAddress     string  `mapstructure:"from_address"`
	ToAddress       string  `mapstructure:"to_address"`
	FromDecimals    int32   `mapstructure:"from_decimals"`
	ToDecimals      int32   `mapstructure:"to_decimals"`
	PriceLookupID   string  `mapstructure:"price_lookup_id"`
	USDSellTarget   float64 `mapstructure:"usd_sell_target"`
	FixedSellAmount float64 `mapstructure:"fixed_sell_amount"`
	MinBuyAmount    float64 `mapstructure:"min_buy_amount"`
}

// WebhookConfig holds outbound notification settings.
type WebhookConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceExporter  string `mapstructure:"trace_exporter"`
	ZipkinEndpoint string `mapstructure:"zipkin_endpoint"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
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
	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (required: it carries the chain and pair lists)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
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
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Scanner
	v.BindEnv("scanner.interval", "ARB_SCAN_INTERVAL")
	v.BindEnv("scanner.output_dir", "ARB_OUTPUT_DIR")

	// Pricing
	v.BindEnv("pricing.base_url", "ARB_PRICING_URL")
	v.BindEnv("pricing.api_key", "ARB_PRICING_API_KEY", "COINGECKO_API_KEY")

	// Providers
	v.BindEnv("providers.zeroex.api_key", "ARB_ZEROEX_API_KEY", "ZEROEX_API_KEY")
	v.BindEnv("providers.oneinch.api_key", "ARB_ONEINCH_API_KEY", "ONEINCH_API_KEY")

	// Webhook
	v.BindEnv("webhook.url", "ARB_WEBHOOK_URL", "WEBHOOK_URL")
	v.BindEnv("webhook.enabled", "ARB_WEBHOOK_ENABLED")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "spread-scanner")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Scanner defaults
	v.SetDefault("scanner.interval", "5m")
	v.SetDefault("scanner.top_n", 20)
	v.SetDefault("scanner.output_dir", "reports")
	v.SetDefault("scanner.retry_attempts", 3)
	v.SetDefault("scanner.retry_base_delay", "500ms")
	v.SetDefault("scanner.request_timeout", "12s")

	// Pricing defaults (CoinGecko public API)
	v.SetDefault("pricing.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("pricing.requests_per_minute", 30)

	// Provider defaults
	v.SetDefault("providers.zeroex.requests_per_minute", 60)
	v.SetDefault("providers.zeroex.endpoints", map[string]string{
		"1":     "https://api.0x.org",
		"10":    "https://optimism.api.0x.org",
		"56":    "https://bsc.api.0x.org",
		"137":   "https://polygon.api.0x.org",
		"42161": "https://arbitrum.api.0x.org",
	})
	v.SetDefault("providers.oneinch.requests_per_minute", 60)
	v.SetDefault("providers.oneinch.base_url", "https://api.1inch.io/v5.0")
	v.SetDefault("providers.openocean.requests_per_minute", 60)
	v.SetDefault("providers.openocean.base_url", "https://open-api.openocean.finance/v3")
	v.SetDefault("providers.cowswap.requests_per_minute", 60)
	v.SetDefault("providers.cowswap.endpoints", map[string]string{
		"1":     "https://api.cow.fi/mainnet",
		"100":   "https://api.cow.fi/xdai",
		"42161": "https://api.cow.fi/arbitrum_one",
	})

	// Webhook defaults
	v.SetDefault("webhook.enabled", false)
	v.SetDefault("webhook.timeout", "10s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "spread-scanner")
	v.SetDefault("telemetry.trace_exporter", "zipkin")
	v.SetDefault("telemetry.zipkin_endpoint", "http://localhost:9411/api/v2/spans")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one chain must be configured")
	}

	seen := make(map[int64]bool, len(c.Chains))
	for _, chain := range c.Chains {
		if chain.ID <= 0 {
			return fmt.Errorf("chain %q has invalid id %d", chain.Name, chain.ID)
		}
		if seen[chain.ID] {
			return fmt.Errorf("duplicate chain id %d", chain.ID)
		}
		seen[chain.ID] = true

		if len(chain.Providers) == 0 {
			return fmt.Errorf("chain %q has no enabled providers", chain.Name)
		}
		for _, p := range chain.Providers {
			if !knownProviders[p] {
				return fmt.Errorf("chain %q enables unknown provider %q", chain.Name, p)
			}
		}

		for _, pair := range chain.Pairs {
			if err := validatePair(chain, pair); err != nil {
				return err
			}
		}
	}

	if c.Webhook.Enabled && c.Webhook.URL == "" {
		return fmt.Errorf("webhook.url is required when webhook.enabled is true")
	}

	return nil
}

func validatePair(chain ChainConfig, pair PairConfig) error {
	if pair.Name == "" {
		return fmt.Errorf("chain %q has a pair without a name", chain.Name)
	}
	if !common.IsHexAddress(pair.FromAddress) {
		return fmt.Errorf("pair %q: invalid from_address %q", pair.Name, pair.FromAddress)
	}
	if !common.IsHexAddress(pair.ToAddress) {
		return fmt.Errorf("pair %q: invalid to_address %q", pair.Name, pair.ToAddress)
	}
	if pair.FromDecimals < 0 || pair.ToDecimals < 0 {
		return fmt.Errorf("pair %q: decimals cannot be negative", pair.Name)
	}
	if pair.FixedSellAmount < 0 || pair.USDSellTarget < 0 || pair.MinBuyAmount < 0 {
		return fmt.Errorf("pair %q: sizing values cannot be negative", pair.Name)
	}
	return nil
}
