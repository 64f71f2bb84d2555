// Package validation runs the deeper per-address check behind discovery:
// a risk score, a fresh pair snapshot and an optional sentiment
// refinement, with verdicts cached for a short window. Validation fails
// closed: any failure on the way to a verdict reads as "not tradeable".
package validation

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/config"
	"tokenscout/internal/cache"
	"tokenscout/internal/metrics"
	"tokenscout/internal/model"
	"tokenscout/internal/risk"
	"tokenscout/internal/sentiment"
)

// PairSource provides the per-token pair snapshot.
type PairSource interface {
	PairByAddress(ctx context.Context, address string) (*model.Pair, error)
}

// Validator decides whether a candidate address is worth trading.
type Validator struct {
	pairs     PairSource
	risk      risk.Scorer
	sentiment sentiment.Service
	cache     cache.Cache
	cfg       config.ValidationConfig
	metrics   *metrics.Recorder
	logger    zerolog.Logger
}

// New creates a validator. sent may be nil, in which case the always-accept
// implementation applies; rec may be nil.
func New(pairs PairSource, scorer risk.Scorer, sent sentiment.Service, store cache.Cache,
	cfg config.ValidationConfig, rec *metrics.Recorder) *Validator {

	if sent == nil {
		sent = sentiment.Accept{}
	}
	return &Validator{
		pairs:     pairs,
		risk:      scorer,
		sentiment: sent,
		cache:     store,
		cfg:       cfg,
		metrics:   rec,
		logger:    log.With().Str("component", "validation").Logger(),
	}
}

// Validate returns the cached verdict when fresh, otherwise computes and
// stores it. It never returns an error; everything that stops a verdict
// resolves to false.
func (v *Validator) Validate(ctx context.Context, address string) bool {
	key := "validate:" + address

	if cached, err := v.cache.Get(ctx, key); err == nil {
		ok, parseErr := strconv.ParseBool(cached)
		if parseErr == nil {
			v.logger.Debug().Str("address", address).Bool("valid", ok).Msg("Cache hit")
			return ok
		}
	}

	ok := v.validate(ctx, address)

	if err := v.cache.Set(ctx, key, strconv.FormatBool(ok), v.cfg.CacheTTL); err != nil {
		// A dead cache only costs repeat lookups.
		v.logger.Warn().Err(err).Str("address", address).Msg("Caching verdict failed")
	}

	result := "rejected"
	if ok {
		result = "accepted"
	}
	v.metrics.RecordValidation(result)
	return ok
}

func (v *Validator) validate(ctx context.Context, address string) bool {
	score, pair, err := v.lookup(ctx, address)
	if err != nil {
		v.logger.Warn().Err(err).Str("address", address).Bool("degraded", true).
			Msg("Validation lookup failed, rejecting")
		v.metrics.RecordError("validation_lookup")
		return false
	}

	if score > v.cfg.MaxRiskScore {
		v.logger.Debug().Str("address", address).Float64("risk", score).Msg("Risk score too high")
		return false
	}

	m := pair.Metrics()
	if reason, ok := v.checkMetrics(m); !ok {
		v.logger.Debug().Str("address", address).Str("reason", reason).Msg("Metrics check failed")
		return false
	}

	return v.refine(ctx, address, m)
}

// lookup fetches the risk score and pair snapshot concurrently. Either
// failure fails the lookup.
func (v *Validator) lookup(ctx context.Context, address string) (float64, *model.Pair, error) {
	var (
		wg      sync.WaitGroup
		score   float64
		pair    *model.Pair
		riskErr error
		pairErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		score, riskErr = v.risk.Score(ctx, address)
	}()
	go func() {
		defer wg.Done()
		pair, pairErr = v.pairs.PairByAddress(ctx, address)
	}()
	wg.Wait()

	if riskErr != nil {
		return 0, nil, riskErr
	}
	if pairErr != nil {
		return 0, nil, pairErr
	}
	return score, pair, nil
}

func (v *Validator) checkMetrics(m model.TokenMetrics) (string, bool) {
	if !v.dexAllowed(m.DexID) {
		return "dex_not_allowed", false
	}
	if m.LiquidityUSD < v.cfg.MinLiquidityUSD {
		return "low_liquidity", false
	}
	if m.Volume24h < v.cfg.MinVolume24hUSD {
		return "low_volume_24h", false
	}
	if m.Txns24h < v.cfg.MinTxns24h {
		return "low_txns_24h", false
	}
	if !v.activeEnough(m) {
		return "low_activity", false
	}
	if math.Abs(m.PriceChange24h) > v.cfg.MaxPriceChange24h {
		return "price_change_exceeded", false
	}
	if m.PriceUSD < v.cfg.MinPriceUSD || m.PriceUSD > v.cfg.MaxPriceUSD {
		return "price_out_of_range", false
	}
	if m.Volume24h/math.Max(m.LiquidityUSD, 1) < v.cfg.MinVolLiquidityRate {
		return "thin_turnover", false
	}
	return "", true
}

func (v *Validator) dexAllowed(dexID string) bool {
	for _, dex := range v.cfg.AllowedDexes {
		if strings.EqualFold(dexID, dex) {
			return true
		}
	}
	return false
}

// activeEnough mirrors the discovery composite so a candidate cannot pass
// one gate and fail the other on the same numbers.
func (v *Validator) activeEnough(m model.TokenMetrics) bool {
	if m.Txns5m == 0 && m.Txns1h == 0 && m.Txns24h == 0 {
		return m.Volume1h >= v.cfg.FallbackVolume1hUSD
	}
	if m.Txns5m >= v.cfg.MinTxns5m {
		return true
	}
	return m.Txns1h >= v.cfg.MinTxns1h && m.Volume1h >= v.cfg.MinVolume1hUSD
}

// refine asks the sentiment service to confirm. Only an explicit "low"
// vetoes; an unavailable or unparseable answer accepts, so a missing
// service never turns into a rejection.
func (v *Validator) refine(ctx context.Context, address string, m model.TokenMetrics) bool {
	label, err := v.sentiment.Classify(ctx, sentiment.MetricsPrompt(address, m))
	if err != nil {
		v.logger.Debug().Err(err).Str("address", address).Msg("Sentiment unavailable, accepting")
		return true
	}

	if label == sentiment.Low {
		v.logger.Debug().Str("address", address).Msg("Sentiment veto")
		return false
	}
	return true
}
