// Package risk wraps the external risk scoring service. Scores land on a
// 0..1 scale where higher means riskier.
package risk

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/config"
	phttp "tokenscout/internal/platform/http"
)

// Scorer returns a risk indicator for a token address.
type Scorer interface {
	Score(ctx context.Context, address string) (float64, error)
}

// Client is the HTTP implementation of Scorer.
type Client struct {
	http   *phttp.Client
	cfg    config.RiskConfig
	logger zerolog.Logger
}

// NewClient creates a risk scoring client.
func NewClient(cfg config.RiskConfig) *Client {
	return &Client{
		http:   phttp.NewClient(phttp.ClientOptions{Timeout: cfg.Timeout}),
		cfg:    cfg,
		logger: log.With().Str("component", "risk_client").Logger(),
	}
}

type reportSummary struct {
	ScoreNormalised float64 `json:"score_normalised"`
	Score           float64 `json:"score"`
}

// Score fetches the risk report summary for an address. The normalized
// score is preferred; older reports only carry the raw score, which is
// scaled down onto the same 0..1 range.
func (c *Client) Score(ctx context.Context, address string) (float64, error) {
	url := fmt.Sprintf("%s/tokens/%s/report/summary", strings.TrimRight(c.cfg.BaseURL, "/"), address)

	var summary reportSummary
	if err := c.http.GetJSON(ctx, url, &summary); err != nil {
		return 0, fmt.Errorf("fetching risk score for %s: %w", address, err)
	}

	score := summary.ScoreNormalised
	if score == 0 && summary.Score > 0 {
		score = summary.Score / 100
		if score > 1 {
			score = 1
		}
	}

	c.logger.Debug().Str("address", address).Float64("score", score).Msg("Fetched risk score")
	return score, nil
}
