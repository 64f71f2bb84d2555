package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenscout/internal/model"
)

func flatWindow(n int, price float64) []model.Candle {
	candles := make([]model.Candle, n)
	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = model.Candle{
			Timestamp: ts.Add(time.Duration(i) * 5 * time.Minute),
			Open:      price, High: price, Low: price, Close: price,
			Volume: 100,
		}
	}
	return candles
}

func TestDetectEmptyWindow(t *testing.T) {
	sum := Detect(nil, 0)
	assert.Empty(t, sum.Signals)
	assert.Zero(t, sum.Confidence)
	assert.Zero(t, sum.ContextScore)
	assert.Nil(t, sum.Best())
}

func TestDetectBullishPin(t *testing.T) {
	window := flatWindow(20, 1.0)
	// Long lower wick, small bullish body: buyers rejected lower prices.
	window[len(window)-1] = model.Candle{Open: 1.00, Close: 1.02, Low: 0.90, High: 1.03}

	sum := Detect(window, 0)

	assert.True(t, sum.BullishPin)
	assert.False(t, sum.BearishPin)

	best := sum.Best()
	require.NotNil(t, best)
	assert.Equal(t, model.BullishPin, best.Type)
	assert.GreaterOrEqual(t, best.Confidence, 0.60)
	assert.LessOrEqual(t, best.Confidence, 0.80)

	// The 5x wick also fires the generic rejection rule, ranked below the pin.
	require.GreaterOrEqual(t, len(sum.Signals), 2)
	assert.Equal(t, model.BullishRejection, sum.Signals[1].Type)
	assert.Equal(t, 0.70, sum.Signals[1].Confidence)
	assert.InDelta(t, 5.0, sum.WickRejectionRatio, 1e-9)
}

func TestDetectBearishPin(t *testing.T) {
	window := flatWindow(20, 1.0)
	window[len(window)-1] = model.Candle{Open: 1.02, Close: 1.00, Low: 0.99, High: 1.12}

	sum := Detect(window, 0)

	assert.True(t, sum.BearishPin)
	best := sum.Best()
	require.NotNil(t, best)
	assert.Equal(t, model.BearishPin, best.Type)
	assert.True(t, best.Type.Bearish())
}

func TestDetectRejectionWithoutDirection(t *testing.T) {
	window := flatWindow(20, 1.0)
	// Bearish bar with a dominant lower wick: no pin (wrong direction),
	// but the rejection rule still fires bullish.
	window[len(window)-1] = model.Candle{Open: 1.02, Close: 1.01, Low: 0.90, High: 1.025}

	sum := Detect(window, 0)

	assert.False(t, sum.BullishPin)
	assert.False(t, sum.BearishPin)
	best := sum.Best()
	require.NotNil(t, best)
	assert.Equal(t, model.BullishRejection, best.Type)
	assert.Equal(t, 0.70, best.Confidence)
}

func TestDetectWickRatioCap(t *testing.T) {
	window := flatWindow(20, 1.0)
	// 50x wick-to-body ratio reports as the cap.
	window[len(window)-1] = model.Candle{Open: 1.000, Close: 1.002, Low: 0.90, High: 1.01}

	sum := Detect(window, 0)
	assert.Equal(t, 10.0, sum.WickRejectionRatio)
}

func TestDetectEngulfing(t *testing.T) {
	window := flatWindow(20, 1.0)
	window[len(window)-2] = model.Candle{Open: 1.00, Close: 0.98, Low: 0.975, High: 1.005}
	// Full-bodied bullish bar bigger than the previous body.
	window[len(window)-1] = model.Candle{Open: 0.98, Close: 1.04, Low: 0.975, High: 1.045}

	sum := Detect(window, 0)

	assert.True(t, sum.BullishEngulfing)
	assert.False(t, sum.BearishEngulfing)
	best := sum.Best()
	require.NotNil(t, best)
	assert.Equal(t, model.BullishEngulfing, best.Type)
	assert.Equal(t, engulfingConfidence, best.Confidence)
}

func TestDetectSingleBarUsesItselfAsPrevious(t *testing.T) {
	// One full-bodied bullish bar: engulfing compares against itself.
	window := []model.Candle{{Open: 1.00, Close: 1.10, Low: 0.995, High: 1.105}}

	sum := Detect(window, 0)
	assert.True(t, sum.BullishEngulfing)
}

func TestContextScore(t *testing.T) {
	t.Run("short history scores only liquidity", func(t *testing.T) {
		window := flatWindow(5, 1.0)
		assert.Equal(t, 0.0, ContextScore(window, 50_000))
		assert.Equal(t, 0.10, ContextScore(window, 150_000))
		assert.Equal(t, 0.20, ContextScore(window, 600_000))
	})

	t.Run("strong uptrend near highs", func(t *testing.T) {
		window := flatWindow(20, 1.0)
		for i := range window {
			p := 1.0 + 0.02*float64(i)
			window[i] = model.Candle{Open: p, Close: p, High: p, Low: p, Volume: 1}
		}
		// trend = +38%, close sits at the top of the band while rising.
		score := ContextScore(window, 600_000)
		assert.InDelta(t, 0.30+0.20+0.20, score, 1e-9)
	})

	t.Run("near support in a flat band", func(t *testing.T) {
		window := flatWindow(20, 1.0)
		for i := range window {
			window[i].High = 1.10
			window[i].Low = 0.95
		}
		// Close at 1.0 sits ~33% up the band: no range bonus, no trend.
		assert.Equal(t, 0.0, ContextScore(window, 0))

		window[len(window)-1].Close = 0.96
		// Bottom 20% of the band is bullish context. The drop is under 10%
		// so the trend component stays zero.
		assert.InDelta(t, 0.25, ContextScore(window, 0), 1e-9)
	})

	t.Run("clamped to one", func(t *testing.T) {
		window := flatWindow(20, 1.0)
		for i := range window {
			p := 1.0 + 0.02*float64(i)
			window[i] = model.Candle{Open: p, Close: p, High: p, Low: p}
		}
		score := ContextScore(window, 10_000_000)
		assert.LessOrEqual(t, score, 1.0)
	})
}

func TestVectorLayout(t *testing.T) {
	window := flatWindow(20, 1.0)
	window[len(window)-1] = model.Candle{Open: 1.00, Close: 1.02, Low: 0.90, High: 1.03}

	sum := Detect(window, 200_000)
	v := sum.Vector()

	assert.Equal(t, 1.0, v[0], "bullish pin flag")
	assert.Equal(t, 0.0, v[1], "bearish pin flag")
	assert.Equal(t, 0.0, v[2], "bullish engulfing flag")
	assert.Equal(t, 0.0, v[3], "bearish engulfing flag")
	assert.Equal(t, sum.WickRejectionRatio, v[4])
	assert.Equal(t, sum.BodyToRange, v[5])
	assert.Equal(t, sum.Confidence, v[6])
	assert.Equal(t, sum.ContextScore, v[7])
}
