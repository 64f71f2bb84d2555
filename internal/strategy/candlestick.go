package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/config"
	"tokenscout/internal/model"
	"tokenscout/internal/pattern"
)

// Candlestick trades single-bar reversal patterns on a candle synthesized
// from the live metrics snapshot. It is stateless; the position comes in
// on every call.
type Candlestick struct {
	cfg    config.CandlestickConfig
	logger zerolog.Logger
}

func NewCandlestick(cfg config.CandlestickConfig) *Candlestick {
	return &Candlestick{
		cfg:    cfg,
		logger: log.With().Str("component", "strategy.candlestick").Logger(),
	}
}

func (s *Candlestick) Name() string { return "candlestick" }

func (s *Candlestick) Analyze(_ context.Context, token string, m model.TokenMetrics, pos *model.PositionInfo) model.MarketSignal {
	candle, ok := synthesizeCandle(m)
	if !ok {
		return s.hold(0, "no usable price data")
	}

	sum := pattern.Detect([]model.Candle{candle}, m.LiquidityUSD)
	best := sum.Best()
	if best == nil {
		return s.hold(0, "no pattern")
	}

	ctxScore := s.contextScore(candle, m, pos)
	rvol := relativeVolume(m)
	volConfirmed := rvol >= s.cfg.MinRelativeVolume

	confidence := (best.Confidence*100*0.4 + ctxScore*0.4 + 20*boolToFloat(volConfirmed)) / 100

	meta := map[string]any{
		"pattern":      string(best.Type),
		"contextScore": ctxScore,
		"rvol":         rvol,
	}

	if best.Type.Bullish() && pos == nil && volConfirmed && ctxScore >= s.cfg.MinContextScore {
		s.logger.Debug().Str("token", token).Str("pattern", string(best.Type)).
			Float64("context", ctxScore).Float64("rvol", rvol).Msg("Entry signal")
		return model.MarketSignal{
			Action:     model.ActionBuy,
			Confidence: math.Min(confidence, s.cfg.MaxBuyConfidence),
			Reason:     fmt.Sprintf("%s with confirming volume", best.Type),
			Metadata:   meta,
		}
	}

	if best.Type.Bearish() && pos != nil && pos.PnLPercent > s.cfg.ProfitLockPercent {
		s.logger.Debug().Str("token", token).Str("pattern", string(best.Type)).
			Float64("pnl", pos.PnLPercent).Msg("Profit-lock exit signal")
		return model.MarketSignal{
			Action:     model.ActionSell,
			Confidence: math.Min(confidence, s.cfg.MaxSellConfidence),
			Reason:     fmt.Sprintf("%s against open gain", best.Type),
			Metadata:   meta,
		}
	}

	return s.hold(confidence, "conditions not met")
}

func (s *Candlestick) hold(confidence float64, reason string) model.MarketSignal {
	return model.MarketSignal{
		Action:     model.ActionHold,
		Confidence: math.Max(confidence, s.cfg.HoldConfidence),
		Reason:     reason,
	}
}

// contextScore grades the setup 0..100 from the 24h trend, where the price
// sits inside the synthesized bar, pool liquidity and the open position.
func (s *Candlestick) contextScore(candle model.Candle, m model.TokenMetrics, pos *model.PositionInfo) float64 {
	var score float64

	switch {
	case m.PriceChange24h > 10:
		score += 30
	case m.PriceChange24h > 0:
		score += 15
	case m.PriceChange24h < -10:
		score += 10
	}

	if candle.High != candle.Low {
		position := (candle.Close - candle.Low) / (candle.High - candle.Low)
		if position < 0.20 {
			score += 25
		} else if position > 0.90 && m.PriceChange24h > 0 {
			score += 20
		}
	}

	if m.LiquidityUSD > 500_000 {
		score += 20
	} else if m.LiquidityUSD > 100_000 {
		score += 10
	}

	// Adding into a losing position is a worse setup than a fresh entry.
	if pos != nil && pos.PnLPercent < 0 {
		score -= 10
	}

	return math.Min(math.Max(score, 0), 100)
}

// synthesizeCandle backs out a 24h bar from the snapshot: the open is the
// price 24h ago implied by the change, the band is widened 1% around the
// open/close extremes.
func synthesizeCandle(m model.TokenMetrics) (model.Candle, bool) {
	if m.PriceUSD <= 0 {
		return model.Candle{}, false
	}
	divisor := 1 + m.PriceChange24h/100
	if divisor <= 0 {
		return model.Candle{}, false
	}

	open := m.PriceUSD / divisor
	return model.Candle{
		Timestamp: time.Now(),
		Open:      open,
		High:      math.Max(open, m.PriceUSD) * 1.01,
		Low:       math.Min(open, m.PriceUSD) * 0.99,
		Close:     m.PriceUSD,
		Volume:    m.Volume1h,
	}, true
}

// relativeVolume compares the last hour against the implied average hourly
// volume over 24h.
func relativeVolume(m model.TokenMetrics) float64 {
	hourly := m.Volume24h / 24
	if hourly <= 0 {
		return 0
	}
	return m.Volume1h / hourly
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
