// Package features assembles the fixed-shape model input for one token:
// a padded 100-bar candle window, the indicator vector, the pattern vector
// and the token context vector.
package features

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/internal/indicator"
	"tokenscout/internal/model"
	"tokenscout/internal/pattern"
)

const (
	// Resolution of the candle window requested from the gateway.
	Resolution = "5m"
	barStep    = 5 * time.Minute

	// Minimum number of real bars required before padding is allowed.
	MinRealBars = 50
)

// CandleSource fetches OHLCV history for an address. Bars come back in
// ascending time order.
type CandleSource interface {
	Candles(ctx context.Context, address, resolution string, limit int) ([]model.Candle, error)
}

// Builder turns a token context into a model input.
type Builder struct {
	source CandleSource
	logger zerolog.Logger
}

// NewBuilder creates a feature builder backed by the given candle source.
func NewBuilder(source CandleSource) *Builder {
	return &Builder{
		source: source,
		logger: log.With().Str("component", "features").Logger(),
	}
}

// Build fetches the candle window and assembles the model input. A token
// with insufficient history yields (nil, nil): not an opportunity, but not
// a failure either. Fetch errors yield (nil, err) so the caller can tell a
// degraded feed from a thin one. Partial inputs never escape.
func (b *Builder) Build(ctx context.Context, tc model.TokenContext) (*model.ModelInput, error) {
	candles, err := b.source.Candles(ctx, tc.Address, Resolution, model.CandleWindow)
	if err != nil {
		b.logger.Warn().Err(err).Str("address", tc.Address).Bool("degraded", true).
			Msg("Candle fetch failed, skipping token")
		return nil, fmt.Errorf("fetching candles for %s: %w", tc.Address, err)
	}

	if len(candles) < MinRealBars {
		b.logger.Debug().Str("address", tc.Address).Int("bars", len(candles)).
			Msg("Insufficient history, skipping token")
		return nil, nil
	}

	window := PadWindow(candles, model.CandleWindow)

	closes := make([]float64, len(window))
	for i, c := range window {
		closes[i] = c.Close
	}

	detected := pattern.Detect(window, tc.LiquidityUSD)

	input := &model.ModelInput{
		Context: [model.ContextSize]float64{
			tc.LiquidityUSD,
			tc.MarketCapUSD,
			tc.Holders,
			tc.AgeHours,
			tc.Volume24hUSD,
		},
		Indicators: indicator.Vector(closes),
		Patterns:   detected.Vector(),
	}
	for i, c := range window {
		input.Candles[i] = [model.CandleFields]float64{c.Open, c.High, c.Low, c.Close, c.Volume}
	}

	return input, nil
}

// PadWindow normalizes a candle series to exactly size bars. Short series
// are left-padded with synthetic copies of the earliest bar (volume 0)
// back-dated in 5-minute steps; long series keep the most recent bars.
func PadWindow(candles []model.Candle, size int) []model.Candle {
	if len(candles) >= size {
		return candles[len(candles)-size:]
	}

	missing := size - len(candles)
	window := make([]model.Candle, 0, size)

	first := candles[0]
	for i := missing; i > 0; i-- {
		window = append(window, model.Candle{
			Timestamp: first.Timestamp.Add(-time.Duration(i) * barStep),
			Open:      first.Open,
			High:      first.High,
			Low:       first.Low,
			Close:     first.Close,
			Volume:    0,
		})
	}
	return append(window, candles...)
}
