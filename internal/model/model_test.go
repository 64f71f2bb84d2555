package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPairMetrics(t *testing.T) {
	p := &Pair{
		DexID:    "raydium",
		PriceUSD: "0.0025",
	}
	p.Liquidity.USD = 80_000
	p.Volume.H24 = 60_000
	p.Volume.H1 = 12_000
	p.Txns.M5 = TxnCount{Buys: 4, Sells: 3}
	p.Txns.H1 = TxnCount{Buys: 50, Sells: 45}
	p.Txns.H24 = TxnCount{Buys: 400, Sells: 380}
	p.PriceChange.H24 = 4.2

	m := p.Metrics()

	assert.Equal(t, 0.0025, m.PriceUSD)
	assert.Equal(t, 4.2, m.PriceChange24h)
	assert.Equal(t, 60_000.0, m.Volume24h)
	assert.Equal(t, 12_000.0, m.Volume1h)
	assert.Equal(t, 80_000.0, m.LiquidityUSD)
	assert.Equal(t, 7, m.Txns5m)
	assert.Equal(t, 95, m.Txns1h)
	assert.Equal(t, 780, m.Txns24h)
	assert.Equal(t, "raydium", m.DexID)
}

func TestPairPriceMalformed(t *testing.T) {
	assert.Equal(t, 0.0, (&Pair{PriceUSD: "n/a"}).Price())
	assert.Equal(t, 0.0, (&Pair{}).Price())
}

func TestPairAgeHours(t *testing.T) {
	now := time.Now()

	p := &Pair{PairCreatedAt: now.Add(-6 * time.Hour).UnixMilli()}
	assert.InDelta(t, 6.0, p.AgeHours(now), 0.01)

	assert.Equal(t, 0.0, (&Pair{}).AgeHours(now))
}

func TestPairContext(t *testing.T) {
	now := time.Now()

	p := &Pair{MarketCap: 1_500_000, PairCreatedAt: now.Add(-2 * time.Hour).UnixMilli()}
	p.BaseToken.Address = "So11111111111111111111111111111111111111112"
	p.Liquidity.USD = 80_000
	p.Volume.H24 = 60_000

	tc := p.Context(now)

	assert.Equal(t, "So11111111111111111111111111111111111111112", tc.Address)
	assert.Equal(t, 80_000.0, tc.LiquidityUSD)
	assert.Equal(t, 1_500_000.0, tc.MarketCapUSD)
	assert.InDelta(t, 2.0, tc.AgeHours, 0.01)
	assert.Equal(t, 60_000.0, tc.Volume24hUSD)
}

func TestPatternTypeDirection(t *testing.T) {
	for _, typ := range []PatternType{BullishPin, BullishEngulfing, BullishRejection} {
		assert.True(t, typ.Bullish(), typ)
		assert.False(t, typ.Bearish(), typ)
	}
	for _, typ := range []PatternType{BearishPin, BearishEngulfing, BearishRejection} {
		assert.True(t, typ.Bearish(), typ)
		assert.False(t, typ.Bullish(), typ)
	}
}
