// Package strategy holds the decision layer: independent strategies that
// each turn a token snapshot into a trade signal, and the engine that
// fans a token out to all of them.
package strategy

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/internal/metrics"
	"tokenscout/internal/model"
)

// Strategy turns one token snapshot into a trade signal. pos is nil when
// no position is held. Implementations must not block on each other and
// must treat missing data as HOLD, never as an error.
type Strategy interface {
	Name() string
	Analyze(ctx context.Context, token string, m model.TokenMetrics, pos *model.PositionInfo) model.MarketSignal
}

// Engine fans a token out to every registered strategy. A panicking
// strategy is contained and reads as HOLD.
type Engine struct {
	strategies []Strategy
	metrics    *metrics.Recorder
	logger     zerolog.Logger
}

// NewEngine creates an engine over the given strategies. rec may be nil.
func NewEngine(rec *metrics.Recorder, strategies ...Strategy) *Engine {
	return &Engine{
		strategies: strategies,
		metrics:    rec,
		logger:     log.With().Str("component", "strategy").Logger(),
	}
}

// Analyze runs every strategy against the token and returns one signal per
// strategy, in registration order.
func (e *Engine) Analyze(ctx context.Context, token string, m model.TokenMetrics, pos *model.PositionInfo) []model.MarketSignal {
	signals := make([]model.MarketSignal, 0, len(e.strategies))
	for _, s := range e.strategies {
		sig := e.analyzeOne(ctx, s, token, m, pos)
		e.metrics.RecordSignal(s.Name(), string(sig.Action))
		signals = append(signals, sig)
	}
	return signals
}

func (e *Engine) analyzeOne(ctx context.Context, s Strategy, token string, m model.TokenMetrics, pos *model.PositionInfo) (sig model.MarketSignal) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("strategy", s.Name()).Str("token", token).
				Interface("panic", r).Msg("Strategy panicked")
			e.metrics.RecordError("strategy_panic")
			sig = model.MarketSignal{
				Action:     model.ActionHold,
				Confidence: 0,
				Reason:     "strategy failure",
			}
		}
	}()
	return s.Analyze(ctx, token, m, pos)
}
