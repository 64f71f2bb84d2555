package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenscout/config"
	"tokenscout/internal/model"
)

func candlestickConfig() config.CandlestickConfig {
	return config.CandlestickConfig{
		MinContextScore:   40,
		MinRelativeVolume: 1.5,
		ProfitLockPercent: 5,
		MaxBuyConfidence:  0.95,
		MaxSellConfidence: 0.90,
		HoldConfidence:    0.35,
	}
}

// Strong up-move on deep liquidity with double the average hourly volume.
func bullishMetrics() model.TokenMetrics {
	return model.TokenMetrics{
		PriceUSD:       1.12,
		PriceChange24h: 12,
		Volume24h:      24_000,
		Volume1h:       2_000,
		LiquidityUSD:   600_000,
	}
}

func TestCandlestickBuysBullishSetup(t *testing.T) {
	s := NewCandlestick(candlestickConfig())

	sig := s.Analyze(context.Background(), "addr", bullishMetrics(), nil)

	assert.Equal(t, model.ActionBuy, sig.Action)
	assert.Greater(t, sig.Confidence, 0.5)
	assert.LessOrEqual(t, sig.Confidence, 0.95)
	assert.Equal(t, string(model.BullishEngulfing), sig.Metadata["pattern"])
}

func TestCandlestickHoldsWithoutVolumeConfirmation(t *testing.T) {
	s := NewCandlestick(candlestickConfig())

	m := bullishMetrics()
	m.Volume1h = 500 // rvol 0.5

	sig := s.Analyze(context.Background(), "addr", m, nil)

	assert.Equal(t, model.ActionHold, sig.Action)
	assert.GreaterOrEqual(t, sig.Confidence, 0.35)
}

func TestCandlestickHoldsWhenAlreadyHolding(t *testing.T) {
	s := NewCandlestick(candlestickConfig())

	sig := s.Analyze(context.Background(), "addr", bullishMetrics(), &model.PositionInfo{Amount: 0.01, PnLPercent: 2})

	assert.Equal(t, model.ActionHold, sig.Action, "bullish entries require no open position")
}

func TestCandlestickProfitLockExit(t *testing.T) {
	s := NewCandlestick(candlestickConfig())

	m := model.TokenMetrics{
		PriceUSD:       0.88,
		PriceChange24h: -12,
		Volume24h:      24_000,
		Volume1h:       2_000,
		LiquidityUSD:   600_000,
	}

	sig := s.Analyze(context.Background(), "addr", m, &model.PositionInfo{Amount: 0.01, PnLPercent: 8})

	require.Equal(t, model.ActionSell, sig.Action)
	assert.LessOrEqual(t, sig.Confidence, 0.90)
}

func TestCandlestickNoExitBelowProfitLock(t *testing.T) {
	s := NewCandlestick(candlestickConfig())

	m := model.TokenMetrics{
		PriceUSD:       0.88,
		PriceChange24h: -12,
		Volume24h:      24_000,
		Volume1h:       2_000,
		LiquidityUSD:   600_000,
	}

	sig := s.Analyze(context.Background(), "addr", m, &model.PositionInfo{Amount: 0.01, PnLPercent: 3})

	assert.Equal(t, model.ActionHold, sig.Action)
}

func TestCandlestickHoldsOnMissingPrice(t *testing.T) {
	s := NewCandlestick(candlestickConfig())

	sig := s.Analyze(context.Background(), "addr", model.TokenMetrics{PriceUSD: 0}, nil)

	assert.Equal(t, model.ActionHold, sig.Action)
	assert.Equal(t, 0.35, sig.Confidence)
}

func TestSynthesizeCandle(t *testing.T) {
	m := model.TokenMetrics{PriceUSD: 1.04, PriceChange24h: 4, Volume1h: 2_000}

	c, ok := synthesizeCandle(m)
	require.True(t, ok)

	assert.InDelta(t, 1.0, c.Open, 1e-9)
	assert.Equal(t, 1.04, c.Close)
	assert.InDelta(t, 1.04*1.01, c.High, 1e-9)
	assert.InDelta(t, 1.0*0.99, c.Low, 1e-9)
	assert.Equal(t, 2_000.0, c.Volume)
}

func TestSynthesizeCandleRejectsDegenerateInputs(t *testing.T) {
	_, ok := synthesizeCandle(model.TokenMetrics{PriceUSD: 0, PriceChange24h: 5})
	assert.False(t, ok)

	_, ok = synthesizeCandle(model.TokenMetrics{PriceUSD: 1, PriceChange24h: -100})
	assert.False(t, ok)
}

func TestRelativeVolume(t *testing.T) {
	assert.Equal(t, 2.0, relativeVolume(model.TokenMetrics{Volume24h: 24_000, Volume1h: 2_000}))
	assert.Equal(t, 0.0, relativeVolume(model.TokenMetrics{Volume24h: 0, Volume1h: 2_000}))
}
