// Package indicator holds the pure numeric indicator math used to build
// model inputs. Everything here is deterministic and does no I/O.
package indicator

import "math"

// Default periods used for the model input vector.
const (
	RSIPeriod       = 14
	MACDFastPeriod  = 12
	MACDSlowPeriod  = 26
	EMAFastPeriod   = 9
	EMASlowPeriod   = 21
	BollingerPeriod = 20
)

// RSI computes the relative strength index over the last period deltas.
// Fewer than period+1 prices yields the neutral 50. A zero average loss
// yields 100, including on a completely flat series.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50.0 // Neutral when not enough data
	}

	var avgGain, avgLoss float64
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// EMA computes an exponential moving average seeded with the first price.
// An empty series yields 0.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 || period <= 0 {
		return 0
	}

	k := 2.0 / float64(period+1)
	ema := prices[0]
	for i := 1; i < len(prices); i++ {
		ema = prices[i]*k + ema*(1-k)
	}
	return ema
}

// MACD returns the fast/slow EMA spread (EMA 12 minus EMA 26).
func MACD(prices []float64) float64 {
	return EMA(prices, MACDFastPeriod) - EMA(prices, MACDSlowPeriod)
}

// BollingerWidth returns the band width relative to the mean over the last
// period closes: 2 population standard deviations divided by the mean.
// Fewer than period prices yields 0.
func BollingerWidth(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}

	window := prices[len(prices)-period:]

	var sum float64
	for _, p := range window {
		sum += p
	}
	mean := sum / float64(period)
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))

	return (2 * sd) / mean
}

// Vector assembles the 5-slot indicator vector consumed by the model:
// [rsi, macd, emaFast, emaSlow, bollingerWidth].
func Vector(prices []float64) [5]float64 {
	return [5]float64{
		RSI(prices, RSIPeriod),
		MACD(prices),
		EMA(prices, EMAFastPeriod),
		EMA(prices, EMASlowPeriod),
		BollingerWidth(prices, BollingerPeriod),
	}
}
