// Package discovery finds candidate tokens in the raw pair listing and
// ranks them by trading activity. Discovery fails soft: a dead feed yields
// an empty candidate list, never an error.
package discovery

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/config"
	"tokenscout/internal/metrics"
	"tokenscout/internal/model"
)

// Rejection predicates, exported through metrics labels.
const (
	reasonFields    = "missing_fields"
	reasonDex       = "dex_not_allowed"
	reasonLiquidity = "low_liquidity"
	reasonVolume    = "low_volume_24h"
	reasonActivity  = "low_activity"
	reasonVolatile  = "price_change_exceeded"
	reasonDust      = "dust_price"
)

// Lister provides the raw pair listing.
type Lister interface {
	Pairs(ctx context.Context) ([]model.Pair, error)
}

// Filter applies the liquidity/volume/activity heuristics to the listing.
type Filter struct {
	source  Lister
	cfg     config.DiscoveryConfig
	metrics *metrics.Recorder
	logger  zerolog.Logger
}

// NewFilter creates a discovery filter. rec may be nil.
func NewFilter(source Lister, cfg config.DiscoveryConfig, rec *metrics.Recorder) *Filter {
	return &Filter{
		source:  source,
		cfg:     cfg,
		metrics: rec,
		logger:  log.With().Str("component", "discovery").Logger(),
	}
}

// Discover fetches a fresh listing and returns the surviving candidates,
// ranked by 24h volume, capped at the configured maximum. The fetch is
// retried a fixed number of times with a constant delay; exhausting the
// retries returns an empty list.
func (f *Filter) Discover(ctx context.Context) []model.Pair {
	pairs, err := f.fetch(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Bool("degraded", true).
			Msg("Listing fetch failed after retries, skipping cycle")
		f.metrics.RecordError("discovery_fetch")
		return nil
	}

	var survivors []model.Pair
	for _, p := range pairs {
		if reason, ok := f.check(&p); !ok {
			f.metrics.RecordRejection(reason)
			continue
		}
		survivors = append(survivors, p)
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Volume.H24 > survivors[j].Volume.H24
	})
	if len(survivors) > f.cfg.MaxCandidates {
		survivors = survivors[:f.cfg.MaxCandidates]
	}

	for range survivors {
		f.metrics.RecordCandidate()
	}
	f.logger.Info().Int("listed", len(pairs)).Int("candidates", len(survivors)).
		Msg("Discovery cycle complete")
	return survivors
}

func (f *Filter) fetch(ctx context.Context) ([]model.Pair, error) {
	var pairs []model.Pair
	operation := func() error {
		var err error
		pairs, err = f.source.Pairs(ctx)
		return err
	}

	// Fixed-delay retries, sequential by design.
	strategy := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(f.cfg.RetryDelay),
		uint64(f.cfg.FetchAttempts-1),
	)
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return nil, err
	}
	return pairs, nil
}

// check runs the predicate chain in order, returning the first failure.
func (f *Filter) check(p *model.Pair) (string, bool) {
	if p.BaseToken.Address == "" || p.DexID == "" || p.PriceUSD == "" {
		return reasonFields, false
	}
	if !f.dexAllowed(p.DexID) {
		return reasonDex, false
	}
	if p.Liquidity.USD < f.cfg.MinLiquidityUSD {
		return reasonLiquidity, false
	}
	if p.Volume.H24 < f.cfg.MinVolume24hUSD {
		return reasonVolume, false
	}
	if !f.activeEnough(p) {
		return reasonActivity, false
	}
	if math.Abs(p.PriceChange.H24) > f.cfg.MaxPriceChange24h {
		return reasonVolatile, false
	}
	if p.Price() < f.cfg.MinPriceUSD {
		return reasonDust, false
	}
	return "", true
}

func (f *Filter) dexAllowed(dexID string) bool {
	for _, d := range f.cfg.AllowedDexes {
		if strings.EqualFold(d, dexID) {
			return true
		}
	}
	return false
}

// activeEnough is the recent-activity composite. Primary: a live 5-minute
// window, or a busy hour with real volume behind it. When every counter
// reads zero the feed is missing transaction data, so hourly volume alone
// stands in.
func (f *Filter) activeEnough(p *model.Pair) bool {
	tx5m := p.Txns.M5.Total()
	tx1h := p.Txns.H1.Total()
	tx24h := p.Txns.H24.Total()

	if tx5m == 0 && tx1h == 0 && tx24h == 0 {
		return p.Volume.H1 >= f.cfg.FallbackVolume1hUSD
	}

	if tx5m >= f.cfg.MinTxns5m {
		return true
	}
	return tx1h >= f.cfg.MinTxns1h && p.Volume.H1 >= f.cfg.MinVolume1hUSD
}
