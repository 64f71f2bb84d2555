// Package pattern derives candlestick geometry from a candle window and
// flags pin-bar, rejection and engulfing setups together with a composite
// context score. Detection never fails: absent data produces an empty
// summary rather than an error.
package pattern

import (
	"fmt"
	"math"
	"sort"

	"tokenscout/internal/model"
)

const (
	// Wick must dominate the body by this factor to qualify as a pin bar.
	minWickToBodyRatio = 2.0
	// Wick-to-body ratio above which a bar counts as a generic rejection.
	rejectionRatio = 3.0
	// Reported wick rejection ratios are capped here for stability.
	maxReportedWickRatio = 10.0
	// Body share of the range (and of the previous body) for engulfing.
	engulfingBodyShare = 0.6

	rejectionConfidence = 0.70
	engulfingConfidence = 0.65
)

// Geometry describes one bar in wick/body terms.
type Geometry struct {
	Body      float64
	UpperWick float64
	LowerWick float64
	Range     float64
	Bullish   bool
	Bearish   bool
}

// Measure computes the wick/body geometry of a single candle.
func Measure(c model.Candle) Geometry {
	return Geometry{
		Body:      math.Abs(c.Close - c.Open),
		UpperWick: c.High - math.Max(c.Close, c.Open),
		LowerWick: math.Min(c.Close, c.Open) - c.Low,
		Range:     c.High - c.Low,
		Bullish:   c.Close > c.Open,
		Bearish:   c.Close < c.Open,
	}
}

// BodyToRange returns the body as a share of the total range, 0 on a
// zero-range bar.
func (g Geometry) BodyToRange() float64 {
	if g.Range == 0 {
		return 0
	}
	return g.Body / g.Range
}

// WickRejection returns the dominant wick relative to the body, 0 when the
// body is zero.
func (g Geometry) WickRejection() float64 {
	if g.Body == 0 {
		return 0
	}
	return math.Max(g.UpperWick, g.LowerWick) / g.Body
}

// Summary is the full detection result for one candle window. Signals are
// ranked by confidence; the first entry is authoritative for callers.
type Summary struct {
	BullishPin       bool
	BearishPin       bool
	BullishEngulfing bool
	BearishEngulfing bool

	WickRejectionRatio float64 // capped at maxReportedWickRatio
	BodyToRange        float64
	Confidence         float64 // best confidence across detected patterns, 0..1
	ContextScore       float64 // 0..1 composite of trend, range position, liquidity

	Signals []model.PatternSignal
}

// Best returns the highest-confidence signal, nil when nothing fired.
func (s *Summary) Best() *model.PatternSignal {
	if len(s.Signals) == 0 {
		return nil
	}
	return &s.Signals[0]
}

// Detect evaluates the last bar of the window. The bar before it is the
// reference for engulfing checks; a single-bar history references itself.
// Rules fire in fixed precedence (pin bar, generic rejection, engulfing)
// so equal-confidence signals rank deterministically.
func Detect(candles []model.Candle, liquidityUSD float64) Summary {
	if len(candles) == 0 {
		return Summary{}
	}

	last := candles[len(candles)-1]
	prev := last
	if len(candles) > 1 {
		prev = candles[len(candles)-2]
	}

	g := Measure(last)
	prevBody := math.Abs(prev.Close - prev.Open)

	sum := Summary{
		WickRejectionRatio: math.Min(g.WickRejection(), maxReportedWickRatio),
		BodyToRange:        g.BodyToRange(),
		ContextScore:       ContextScore(candles, liquidityUSD),
	}

	// 1. Pin bars: one-sided wick dominates the body and the bar closes in
	// the direction of the rejection.
	if g.LowerWick > g.Body*minWickToBodyRatio && g.Bullish {
		sum.BullishPin = true
		sum.add(model.BullishPin, pinConfidence(g.LowerWick, g.Range),
			fmt.Sprintf("lower wick %.1fx body", safeRatio(g.LowerWick, g.Body)))
	}
	if g.UpperWick > g.Body*minWickToBodyRatio && g.Bearish {
		sum.BearishPin = true
		sum.add(model.BearishPin, pinConfidence(g.UpperWick, g.Range),
			fmt.Sprintf("upper wick %.1fx body", safeRatio(g.UpperWick, g.Body)))
	}

	// 2. Generic wick rejection: either wick dwarfs the body regardless of
	// bar direction. Bullish when the lower wick dominates.
	if g.WickRejection() > rejectionRatio {
		typ := model.BearishRejection
		if g.LowerWick >= g.UpperWick {
			typ = model.BullishRejection
		}
		sum.add(typ, rejectionConfidence,
			fmt.Sprintf("wick rejection %.1fx body", sum.WickRejectionRatio))
	}

	// 3. Engulfing: large directional body that also covers most of the
	// previous bar's body.
	if sum.BodyToRange > engulfingBodyShare && g.Body > prevBody*engulfingBodyShare {
		if g.Bullish {
			sum.BullishEngulfing = true
			sum.add(model.BullishEngulfing, engulfingConfidence, "bullish body engulfs previous")
		} else if g.Bearish {
			sum.BearishEngulfing = true
			sum.add(model.BearishEngulfing, engulfingConfidence, "bearish body engulfs previous")
		}
	}

	// Rank by confidence; the stable sort keeps the precedence order above
	// for ties.
	sort.SliceStable(sum.Signals, func(i, j int) bool {
		return sum.Signals[i].Confidence > sum.Signals[j].Confidence
	})
	for _, sig := range sum.Signals {
		if sig.Confidence > sum.Confidence {
			sum.Confidence = sig.Confidence
		}
	}

	return sum
}

func (s *Summary) add(typ model.PatternType, confidence float64, reason string) {
	s.Signals = append(s.Signals, model.PatternSignal{Type: typ, Confidence: confidence, Reason: reason})
}

// pinConfidence maps wick strength (wick share of the range, in percent)
// into the 0.60..0.80 band.
func pinConfidence(wick, barRange float64) float64 {
	var strength float64
	if barRange > 0 {
		strength = wick / barRange * 100
	}
	return math.Min(60+strength*0.3, 80) / 100
}

func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// ContextScore blends 20-bar trend, position in the recent high/low band
// and pool liquidity into a 0..1 gate for pattern entries.
func ContextScore(candles []model.Candle, liquidityUSD float64) float64 {
	var score float64
	var trend float64

	// Trend: close-to-close change over the last 20 bars.
	if len(candles) >= 20 {
		recent := candles[len(candles)-20:]
		first := recent[0].Close
		if first != 0 {
			trend = (recent[len(recent)-1].Close - first) / first * 100
		}
		switch {
		case trend > 10:
			score += 0.30
		case trend > 0:
			score += 0.15
		case trend < -10:
			score += 0.10
		}
	}

	// Range position: where the latest close sits in the 20-bar band.
	// Near support is the strongest context; near resistance only counts
	// while the trend is still up.
	if len(candles) >= 20 {
		recent := candles[len(candles)-20:]
		high := recent[0].High
		low := recent[0].Low
		for _, c := range recent[1:] {
			high = math.Max(high, c.High)
			low = math.Min(low, c.Low)
		}
		if high != low {
			position := (candles[len(candles)-1].Close - low) / (high - low)
			if position < 0.20 {
				score += 0.25
			} else if position > 0.90 && trend > 0 {
				score += 0.20
			}
		}
	}

	// Liquidity context.
	if liquidityUSD > 500_000 {
		score += 0.20
	} else if liquidityUSD > 100_000 {
		score += 0.10
	}

	return math.Min(score, 1.0)
}

// Vector assembles the 8-slot pattern feature vector consumed by the model:
// [bullishPin, bearishPin, bullishEngulfing, bearishEngulfing,
// wickRejectionRatio, bodyToRange, confidence, contextScore].
func (s *Summary) Vector() [model.PatternSize]float64 {
	return [model.PatternSize]float64{
		boolToFloat(s.BullishPin),
		boolToFloat(s.BearishPin),
		boolToFloat(s.BullishEngulfing),
		boolToFloat(s.BearishEngulfing),
		s.WickRejectionRatio,
		s.BodyToRange,
		s.Confidence,
		s.ContextScore,
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
