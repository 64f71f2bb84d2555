package model

import "time"

// Candle represents a single OHLCV bar. Candles arriving from the market
// gateway are ascending by timestamp and are trusted as-is.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// TokenContext carries the per-token market context for one analysis cycle.
type TokenContext struct {
	Address      string  `json:"address"`
	LiquidityUSD float64 `json:"liquidity"`
	MarketCapUSD float64 `json:"marketCap"`
	Holders      float64 `json:"holders"`
	AgeHours     float64 `json:"ageHours"`
	Volume24hUSD float64 `json:"volume24h"`
}

// Model input dimensions. The downstream model expects these shapes and
// nothing else; partially filled inputs must never be produced.
const (
	CandleWindow  = 100
	CandleFields  = 5
	ContextSize   = 5
	IndicatorSize = 5
	PatternSize   = 8
)

// ModelInput is the fixed-shape feature bundle handed to model inference.
type ModelInput struct {
	Candles    [CandleWindow][CandleFields]float64 `json:"candles"`
	Context    [ContextSize]float64                `json:"context"`
	Indicators [IndicatorSize]float64              `json:"indicators"`
	Patterns   [PatternSize]float64                `json:"patterns"`
}

// PatternType identifies a detected candlestick pattern.
type PatternType string

const (
	BullishPin       PatternType = "BULLISH_PIN"
	BearishPin       PatternType = "BEARISH_PIN"
	BullishEngulfing PatternType = "BULLISH_ENGULFING"
	BearishEngulfing PatternType = "BEARISH_ENGULFING"
	BullishRejection PatternType = "BULLISH_REJECTION"
	BearishRejection PatternType = "BEARISH_REJECTION"
)

// Bullish reports whether the pattern points up.
func (p PatternType) Bullish() bool {
	switch p {
	case BullishPin, BullishEngulfing, BullishRejection:
		return true
	}
	return false
}

// Bearish reports whether the pattern points down.
func (p PatternType) Bearish() bool {
	switch p {
	case BearishPin, BearishEngulfing, BearishRejection:
		return true
	}
	return false
}

// PatternSignal is one detected pattern with its confidence on a 0..1 scale.
type PatternSignal struct {
	Type       PatternType `json:"type"`
	Confidence float64     `json:"confidence"`
	Reason     string      `json:"reason"`
}

// TokenMetrics is the snapshot a strategy reads. All fields may legitimately
// be zero when the upstream feed has gaps.
type TokenMetrics struct {
	PriceUSD       float64 `json:"priceUsd"`
	PriceChange24h float64 `json:"priceChange24h"`
	Volume24h      float64 `json:"volume24h"`
	Volume1h       float64 `json:"volume1h"`
	LiquidityUSD   float64 `json:"liquidity"`
	Txns5m         int     `json:"txns5m"`
	Txns1h         int     `json:"txns1h"`
	Txns24h        int     `json:"txns24h"`
	DexID          string  `json:"dexId"`
}

// PositionInfo describes an open position, supplied by the execution side.
// Strategies only read it.
type PositionInfo struct {
	Amount     float64 `json:"amount"`
	PnLPercent float64 `json:"pnlPercent"`
}

// Action is the trading action a strategy emits.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// MarketSignal is the output of a strategy run.
type MarketSignal struct {
	Action     Action         `json:"action"`
	Confidence float64        `json:"confidence"`
	Reason     string         `json:"reason"`
	Amount     float64        `json:"amount,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
