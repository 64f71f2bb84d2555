package model

import (
	"strconv"
	"time"
)

// Pair mirrors one raw pair record from the market listing endpoint.
// Every field is optional on the wire; absent values decode to zero.
type Pair struct {
	ChainID   string `json:"chainId"`
	DexID     string `json:"dexId"`
	PairAddr  string `json:"pairAddress"`
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD  string `json:"priceUsd"` // decimal string on the wire
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
		H1  float64 `json:"h1"`
	} `json:"volume"`
	Txns struct {
		M5  TxnCount `json:"m5"`
		H1  TxnCount `json:"h1"`
		H24 TxnCount `json:"h24"`
	} `json:"txns"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	MarketCap     float64 `json:"marketCap"`
	PairCreatedAt int64   `json:"pairCreatedAt"` // unix ms
}

// TxnCount holds buy/sell transaction counters for one window.
type TxnCount struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// Total returns buys plus sells.
func (t TxnCount) Total() int { return t.Buys + t.Sells }

// Price parses the wire price string. Malformed or absent prices read as 0.
func (p *Pair) Price() float64 {
	v, err := strconv.ParseFloat(p.PriceUSD, 64)
	if err != nil {
		return 0
	}
	return v
}

// AgeHours returns the pair age relative to now, 0 when unknown.
func (p *Pair) AgeHours(now time.Time) float64 {
	if p.PairCreatedAt <= 0 {
		return 0
	}
	return now.Sub(time.UnixMilli(p.PairCreatedAt)).Hours()
}

// Metrics converts the raw pair record into the snapshot strategies read.
func (p *Pair) Metrics() TokenMetrics {
	return TokenMetrics{
		PriceUSD:       p.Price(),
		PriceChange24h: p.PriceChange.H24,
		Volume24h:      p.Volume.H24,
		Volume1h:       p.Volume.H1,
		LiquidityUSD:   p.Liquidity.USD,
		Txns5m:         p.Txns.M5.Total(),
		Txns1h:         p.Txns.H1.Total(),
		Txns24h:        p.Txns.H24.Total(),
		DexID:          p.DexID,
	}
}

// Context converts the raw pair record into the per-cycle token context.
// Holder counts are not part of the listing payload and stay 0 unless a
// richer source fills them in.
func (p *Pair) Context(now time.Time) TokenContext {
	return TokenContext{
		Address:      p.BaseToken.Address,
		LiquidityUSD: p.Liquidity.USD,
		MarketCapUSD: p.MarketCap,
		AgeHours:     p.AgeHours(now),
		Volume24hUSD: p.Volume.H24,
	}
}
