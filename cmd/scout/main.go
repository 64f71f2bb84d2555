package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/config"
	"tokenscout/internal/cache"
	"tokenscout/internal/discovery"
	"tokenscout/internal/features"
	"tokenscout/internal/market"
	"tokenscout/internal/metrics"
	"tokenscout/internal/model"
	"tokenscout/internal/notifier"
	"tokenscout/internal/risk"
	"tokenscout/internal/sentiment"
	"tokenscout/internal/strategy"
	"tokenscout/internal/validation"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config, optional")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Loading config failed")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	agent, err := buildAgent(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Wiring components failed")
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr)
	}

	log.Info().Dur("interval", cfg.ScanInterval).Msg("Scout started")
	agent.run(ctx, cfg.ScanInterval)
	log.Info().Msg("Scout stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
	}
}

// agent owns one fully wired pipeline and walks it once per cycle.
type agent struct {
	filter    *discovery.Filter
	validator *validation.Validator
	builder   *features.Builder
	engine    *strategy.Engine
	notify    notifier.Notifier
}

func buildAgent(ctx context.Context, cfg *config.Config) (*agent, error) {
	gateway := market.NewClient(cfg.Market)
	scorer := risk.NewClient(cfg.Risk)

	var store cache.Cache
	if cfg.Cache.RedisAddr != "" {
		redis, err := cache.NewRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			return nil, err
		}
		store = redis
	} else {
		store = cache.NewMemory(time.Minute)
	}

	var sent sentiment.Service
	if cfg.Sentiment.OpenAIAPIKey != "" {
		sent = sentiment.NewOpenAI(cfg.Sentiment.OpenAIAPIKey, cfg.Sentiment.Model)
	}

	var notify notifier.Notifier
	if cfg.Telegram.Token != "" {
		tg, err := notifier.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		notify = tg
	} else {
		notify = notifier.NewLog()
	}

	var rec *metrics.Recorder
	if cfg.Metrics.Enabled {
		rec = metrics.New()
	}

	return &agent{
		filter:    discovery.NewFilter(gateway, cfg.Discovery, rec),
		validator: validation.New(gateway, scorer, sent, store, cfg.Validation, rec),
		builder:   features.NewBuilder(gateway),
		engine: strategy.NewEngine(rec,
			strategy.NewCandlestick(cfg.Candlestick),
			strategy.NewDCA(cfg.DCA, scorer),
		),
		notify: notify,
	}, nil
}

func (a *agent) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.cycle(ctx)
		}
	}
}

func (a *agent) cycle(ctx context.Context) {
	now := time.Now()

	for _, pair := range a.filter.Discover(ctx) {
		if ctx.Err() != nil {
			return
		}
		address := pair.BaseToken.Address
		if address == "" {
			continue
		}

		if !a.validator.Validate(ctx, address) {
			continue
		}

		input, err := a.builder.Build(ctx, pair.Context(now))
		if err == nil && input != nil {
			log.Debug().Str("address", address).Msg("Model input ready")
		}

		// Strategies read the live snapshot regardless of candle history.
		// Positions are owned by the execution side; a fresh scan holds none.
		for _, sig := range a.engine.Analyze(ctx, address, pair.Metrics(), nil) {
			if sig.Action == model.ActionHold {
				continue
			}
			if err := a.notify.Notify(ctx, address, sig); err != nil {
				log.Warn().Err(err).Str("address", address).Msg("Notification failed")
			}
		}
	}
}
