// Package config resolves all tunable thresholds once at startup.
// Precedence, highest first: explicit override (functional option),
// environment variable, YAML file, built-in default. Components receive
// the resolved struct and never consult the environment themselves.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the resolved, immutable application configuration.
type Config struct {
	LogLevel  string `yaml:"log_level" default:"info"`
	LogFormat string `yaml:"log_format" default:"console"` // console or json

	Discovery   DiscoveryConfig   `yaml:"discovery"`
	Validation  ValidationConfig  `yaml:"validation"`
	Candlestick CandlestickConfig `yaml:"candlestick"`
	DCA         DCAConfig         `yaml:"dca"`

	Market    MarketConfig    `yaml:"market"`
	Risk      RiskConfig      `yaml:"risk"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Cache     CacheConfig     `yaml:"cache"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// ScanInterval is the pause between agent cycles.
	ScanInterval time.Duration `yaml:"scan_interval" default:"60s"`
}

// DiscoveryConfig holds the listing filter thresholds.
type DiscoveryConfig struct {
	AllowedDexes        []string      `yaml:"allowed_dexes" default:"[\"raydium\"]"`
	MinLiquidityUSD     float64       `yaml:"min_liquidity_usd" default:"50000" validate:"gte=0"`
	MinVolume24hUSD     float64       `yaml:"min_volume_24h_usd" default:"25000" validate:"gte=0"`
	MinTxns5m           int           `yaml:"min_txns_5m" default:"5" validate:"gte=0"`
	MinTxns1h           int           `yaml:"min_txns_1h" default:"80" validate:"gte=0"`
	MinVolume1hUSD      float64       `yaml:"min_volume_1h_usd" default:"10000" validate:"gte=0"`
	FallbackVolume1hUSD float64       `yaml:"fallback_volume_1h_usd" default:"1000" validate:"gte=0"`
	MaxPriceChange24h   float64       `yaml:"max_price_change_24h" default:"80" validate:"gt=0"`
	MinPriceUSD         float64       `yaml:"min_price_usd" default:"0.000001"`
	MaxCandidates       int           `yaml:"max_candidates" default:"10" validate:"gt=0"`
	FetchAttempts       int           `yaml:"fetch_attempts" default:"3" validate:"gte=1"`
	RetryDelay          time.Duration `yaml:"retry_delay" default:"2s"`
}

// ValidationConfig holds the per-address validation thresholds. The
// allow-list and activity floors default to the discovery values so both
// gates judge a candidate by the same numbers.
type ValidationConfig struct {
	AllowedDexes        []string      `yaml:"allowed_dexes" default:"[\"raydium\"]"`
	MinLiquidityUSD     float64       `yaml:"min_liquidity_usd" default:"50000" validate:"gte=0"`
	MinVolume24hUSD     float64       `yaml:"min_volume_24h_usd" default:"25000" validate:"gte=0"`
	MinTxns5m           int           `yaml:"min_txns_5m" default:"5" validate:"gte=0"`
	MinTxns1h           int           `yaml:"min_txns_1h" default:"80" validate:"gte=0"`
	MinVolume1hUSD      float64       `yaml:"min_volume_1h_usd" default:"10000" validate:"gte=0"`
	FallbackVolume1hUSD float64       `yaml:"fallback_volume_1h_usd" default:"1000" validate:"gte=0"`
	MinTxns24h          int           `yaml:"min_txns_24h" default:"50" validate:"gte=0"`
	MaxRiskScore        float64       `yaml:"max_risk_score" default:"0.5" validate:"gte=0,lte=1"`
	MaxPriceChange24h   float64       `yaml:"max_price_change_24h" default:"80" validate:"gt=0"`
	MinPriceUSD         float64       `yaml:"min_price_usd" default:"0.000001"`
	MaxPriceUSD         float64       `yaml:"max_price_usd" default:"1000" validate:"gt=0"`
	MinVolLiquidityRate float64       `yaml:"min_volume_liquidity_ratio" default:"0.1" validate:"gte=0"`
	CacheTTL            time.Duration `yaml:"cache_ttl" default:"5m"`
}

// CandlestickConfig tunes the candlestick strategy gates.
type CandlestickConfig struct {
	MinContextScore   float64 `yaml:"min_context_score" default:"40" validate:"gte=0,lte=100"`
	MinRelativeVolume float64 `yaml:"min_relative_volume" default:"1.5" validate:"gt=0"`
	ProfitLockPercent float64 `yaml:"profit_lock_percent" default:"5" validate:"gte=0"`
	MaxBuyConfidence  float64 `yaml:"max_buy_confidence" default:"0.95" validate:"gt=0,lte=1"`
	MaxSellConfidence float64 `yaml:"max_sell_confidence" default:"0.90" validate:"gt=0,lte=1"`
	HoldConfidence    float64 `yaml:"hold_confidence" default:"0.35" validate:"gte=0,lte=1"`
}

// DCAConfig tunes the dollar-cost-averaging strategy.
type DCAConfig struct {
	MinLiquidityUSD   float64       `yaml:"min_liquidity_usd" default:"25000" validate:"gte=0"`
	MinVolume24hUSD   float64       `yaml:"min_volume_24h_usd" default:"50000" validate:"gte=0"`
	MaxRiskScore      float64       `yaml:"max_risk_score" default:"0.5" validate:"gte=0,lte=1"`
	Cooldown          time.Duration `yaml:"cooldown" default:"30m"`
	MaxAccumulated    float64       `yaml:"max_accumulated" default:"0.01" validate:"gt=0"`
	BuyIncrement      float64       `yaml:"buy_increment" default:"0.002" validate:"gt=0"`
	MaxPriceDropPct   float64       `yaml:"max_price_drop_pct" default:"10" validate:"gte=0"`
	MaxPriceRisePct   float64       `yaml:"max_price_rise_pct" default:"5" validate:"gte=0"`
	TakeProfitPercent float64       `yaml:"take_profit_percent" default:"15" validate:"gt=0"`
	ExitFraction      float64       `yaml:"exit_fraction" default:"0.25" validate:"gt=0,lte=1"`
}

// MarketConfig configures the market data gateway client.
type MarketConfig struct {
	ListingURL     string        `yaml:"listing_url" default:"https://api.dexscreener.com/latest/dex/search?q=solana" validate:"url"`
	PairURL        string        `yaml:"pair_url" default:"https://api.dexscreener.com/latest/dex/tokens" validate:"url"`
	OHLCVURL       string        `yaml:"ohlcv_url" default:"https://api.geckoterminal.com/api/v2/networks/solana" validate:"url"`
	Timeout        time.Duration `yaml:"timeout" default:"30s"`
	RequestsPerSec int           `yaml:"requests_per_sec" default:"5" validate:"gt=0"`
}

// RiskConfig configures the risk scoring service client.
type RiskConfig struct {
	BaseURL string        `yaml:"base_url" default:"https://api.rugcheck.xyz/v1" validate:"url"`
	Timeout time.Duration `yaml:"timeout" default:"15s"`
}

// SentimentConfig configures the optional sentiment refinement service.
// Leaving the API key empty disables it; validation then accepts by default.
type SentimentConfig struct {
	OpenAIAPIKey string `yaml:"openai_api_key"`
	Model        string `yaml:"model" default:"gpt-4o-mini"`
}

// CacheConfig selects the validation cache backend. An empty Redis address
// selects the in-process cache.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// TelegramConfig configures the signal notifier. Empty token disables it.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Addr    string `yaml:"addr" default:":9102"`
}

// Option applies an explicit override after file and environment resolution.
type Option func(*Config)

// WithDiscovery replaces the discovery thresholds wholesale.
func WithDiscovery(d DiscoveryConfig) Option {
	return func(c *Config) { c.Discovery = d }
}

// WithValidation replaces the validation thresholds wholesale.
func WithValidation(v ValidationConfig) Option {
	return func(c *Config) { c.Validation = v }
}

// Load resolves the configuration. path may be empty, in which case only
// defaults, environment and options apply. Malformed environment values
// fall back to the value already resolved.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	for _, opt := range opts {
		opt(cfg)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = envString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envString("LOG_FORMAT", c.LogFormat)
	c.ScanInterval = envDuration("SCAN_INTERVAL", c.ScanInterval)

	if v := os.Getenv("DISCOVERY_ALLOWED_DEXES"); v != "" {
		c.Discovery.AllowedDexes = strings.Split(v, ",")
	}
	c.Discovery.MinLiquidityUSD = envFloat("DISCOVERY_MIN_LIQUIDITY_USD", c.Discovery.MinLiquidityUSD)
	c.Discovery.MinVolume24hUSD = envFloat("DISCOVERY_MIN_VOLUME_24H_USD", c.Discovery.MinVolume24hUSD)
	c.Discovery.MinTxns5m = envInt("DISCOVERY_MIN_TXNS_5M", c.Discovery.MinTxns5m)
	c.Discovery.MinTxns1h = envInt("DISCOVERY_MIN_TXNS_1H", c.Discovery.MinTxns1h)
	c.Discovery.MinVolume1hUSD = envFloat("DISCOVERY_MIN_VOLUME_1H_USD", c.Discovery.MinVolume1hUSD)
	c.Discovery.MaxPriceChange24h = envFloat("DISCOVERY_MAX_PRICE_CHANGE_24H", c.Discovery.MaxPriceChange24h)
	c.Discovery.MaxCandidates = envInt("DISCOVERY_MAX_CANDIDATES", c.Discovery.MaxCandidates)

	if v := os.Getenv("VALIDATION_ALLOWED_DEXES"); v != "" {
		c.Validation.AllowedDexes = strings.Split(v, ",")
	}
	c.Validation.MinLiquidityUSD = envFloat("VALIDATION_MIN_LIQUIDITY_USD", c.Validation.MinLiquidityUSD)
	c.Validation.MinVolume24hUSD = envFloat("VALIDATION_MIN_VOLUME_24H_USD", c.Validation.MinVolume24hUSD)
	c.Validation.MinTxns5m = envInt("VALIDATION_MIN_TXNS_5M", c.Validation.MinTxns5m)
	c.Validation.MinTxns1h = envInt("VALIDATION_MIN_TXNS_1H", c.Validation.MinTxns1h)
	c.Validation.MinVolume1hUSD = envFloat("VALIDATION_MIN_VOLUME_1H_USD", c.Validation.MinVolume1hUSD)
	c.Validation.MaxRiskScore = envFloat("VALIDATION_MAX_RISK_SCORE", c.Validation.MaxRiskScore)
	c.Validation.CacheTTL = envDuration("VALIDATION_CACHE_TTL", c.Validation.CacheTTL)

	c.DCA.MinLiquidityUSD = envFloat("DCA_MIN_LIQUIDITY_USD", c.DCA.MinLiquidityUSD)
	c.DCA.MinVolume24hUSD = envFloat("DCA_MIN_VOLUME_24H_USD", c.DCA.MinVolume24hUSD)
	c.DCA.Cooldown = envDuration("DCA_COOLDOWN", c.DCA.Cooldown)
	c.DCA.MaxAccumulated = envFloat("DCA_MAX_ACCUMULATED", c.DCA.MaxAccumulated)
	c.DCA.BuyIncrement = envFloat("DCA_BUY_INCREMENT", c.DCA.BuyIncrement)

	c.Market.ListingURL = envString("MARKET_LISTING_URL", c.Market.ListingURL)
	c.Market.PairURL = envString("MARKET_PAIR_URL", c.Market.PairURL)
	c.Market.OHLCVURL = envString("MARKET_OHLCV_URL", c.Market.OHLCVURL)
	c.Risk.BaseURL = envString("RISK_BASE_URL", c.Risk.BaseURL)

	c.Sentiment.OpenAIAPIKey = envString("OPENAI_API_KEY", c.Sentiment.OpenAIAPIKey)
	c.Sentiment.Model = envString("OPENAI_MODEL", c.Sentiment.Model)

	c.Cache.RedisAddr = envString("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = envString("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = envInt("REDIS_DB", c.Cache.RedisDB)

	c.Telegram.Token = envString("TELEGRAM_TOKEN", c.Telegram.Token)
	c.Telegram.ChatID = envInt64("TELEGRAM_CHAT_ID", c.Telegram.ChatID)
}

// Helper functions for environment variable handling.
func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
