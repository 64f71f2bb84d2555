// Package market implements the market data gateway: the pair listing,
// per-token pair snapshots and OHLCV history. Responses are treated as
// possibly incomplete; zeroed fields pass through for the filters to judge.
package market

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/config"
	"tokenscout/internal/model"
	phttp "tokenscout/internal/platform/http"
)

// Gateway is the market data surface the pipeline consumes.
type Gateway interface {
	Pairs(ctx context.Context) ([]model.Pair, error)
	PairByAddress(ctx context.Context, address string) (*model.Pair, error)
	Candles(ctx context.Context, address, resolution string, limit int) ([]model.Candle, error)
}

// Client is the HTTP implementation of Gateway.
type Client struct {
	http   *phttp.Client
	cfg    config.MarketConfig
	logger zerolog.Logger
}

// NewClient creates a market data client.
func NewClient(cfg config.MarketConfig) *Client {
	return &Client{
		http: phttp.NewClient(phttp.ClientOptions{
			Timeout:        cfg.Timeout,
			RequestsPerSec: cfg.RequestsPerSec,
		}),
		cfg:    cfg,
		logger: log.With().Str("component", "market_client").Logger(),
	}
}

type listingResponse struct {
	Pairs []model.Pair `json:"pairs"`
}

// Pairs fetches the raw pair listing. A single call maps to a single
// upstream request; retry policy across calls belongs to the caller.
func (c *Client) Pairs(ctx context.Context) ([]model.Pair, error) {
	var resp listingResponse
	if err := c.http.GetJSON(ctx, c.cfg.ListingURL, &resp); err != nil {
		return nil, fmt.Errorf("fetching pair listing: %w", err)
	}

	c.logger.Debug().Int("pairs", len(resp.Pairs)).Msg("Fetched pair listing")
	return resp.Pairs, nil
}

// PairByAddress fetches the pairs trading a token and returns the deepest
// one by liquidity. A token with no pairs is a data-quality gap, reported
// as an error so validation can fail closed.
func (c *Client) PairByAddress(ctx context.Context, address string) (*model.Pair, error) {
	url := fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.PairURL, "/"), address)

	var resp listingResponse
	if err := c.http.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetching pair for %s: %w", address, err)
	}
	if len(resp.Pairs) == 0 {
		return nil, fmt.Errorf("no pairs found for %s", address)
	}

	best := resp.Pairs[0]
	for _, p := range resp.Pairs[1:] {
		if p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	return &best, nil
}

type ohlcvResponse struct {
	Data struct {
		Attributes struct {
			List [][]float64 `json:"ohlcv_list"` // [ts, open, high, low, close, volume]
		} `json:"attributes"`
	} `json:"data"`
}

// Candles fetches OHLCV bars for a token and returns them oldest first.
func (c *Client) Candles(ctx context.Context, address, resolution string, limit int) ([]model.Candle, error) {
	timeframe, aggregate, err := splitResolution(resolution)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/pools/%s/ohlcv/%s?aggregate=%d&limit=%d",
		strings.TrimRight(c.cfg.OHLCVURL, "/"), address, timeframe, aggregate, limit)

	var resp ohlcvResponse
	if err := c.http.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetching candles for %s: %w", address, err)
	}

	candles := make([]model.Candle, 0, len(resp.Data.Attributes.List))
	for _, row := range resp.Data.Attributes.List {
		if len(row) < 6 {
			continue // malformed row, skip rather than fail the window
		}
		candles = append(candles, model.Candle{
			Timestamp: time.Unix(int64(row[0]), 0).UTC(),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
			Volume:    row[5],
		})
	}

	// The API returns newest first; calculations need oldest first.
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	c.logger.Debug().Str("address", address).Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// splitResolution maps a "5m"-style resolution onto the timeframe and
// aggregate parameters of the OHLCV endpoint.
func splitResolution(resolution string) (string, int, error) {
	switch resolution {
	case "1m":
		return "minute", 1, nil
	case "5m":
		return "minute", 5, nil
	case "15m":
		return "minute", 15, nil
	case "1h":
		return "hour", 1, nil
	case "1d":
		return "day", 1, nil
	default:
		return "", 0, fmt.Errorf("unsupported resolution %q", resolution)
	}
}
