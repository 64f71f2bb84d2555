// Package sentiment is the optional natural-language refinement step for
// token validation. It is an injected capability: when no API key is
// configured the always-accept implementation keeps the fail-open contract
// without conditional loading logic at the call sites.
package sentiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"tokenscout/internal/model"
)

// Classification outcomes. Only an exact "high" confirms and only an exact
// "low" vetoes; anything else reads as accept.
const (
	High = "high"
	Low  = "low"
)

// Service classifies a metrics summary into a sentiment label.
type Service interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// Accept is the default Service used when sentiment is unconfigured.
// It confirms everything.
type Accept struct{}

// Classify always returns the confirming label.
func (Accept) Classify(context.Context, string) (string, error) {
	return High, nil
}

// OpenAI classifies via a chat completion.
type OpenAI struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAI creates a sentiment client for the given API key and model.
func NewOpenAI(apiKey, model string) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: log.With().Str("component", "sentiment").Logger(),
	}
}

// Classify sends the prompt and normalizes the response to a lowercase
// single-word label.
func (o *OpenAI) Classify(ctx context.Context, prompt string) (string, error) {
	o.logger.Debug().Str("prompt", prompt).Msg("Sending prompt")

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		o.logger.Warn().Err(err).Msg("Sentiment service unavailable")
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	return strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content)), nil
}

// MetricsPrompt renders the four headline metrics into the classification
// prompt sent to the service.
func MetricsPrompt(address string, m model.TokenMetrics) string {
	var sb strings.Builder
	sb.WriteString("Rate the trading interest for this token as exactly one word, high or low.\n\n")
	sb.WriteString(fmt.Sprintf("Token: %s\n", address))
	sb.WriteString(fmt.Sprintf("Liquidity: $%.0f\n", m.LiquidityUSD))
	sb.WriteString(fmt.Sprintf("24h volume: $%.0f\n", m.Volume24h))
	sb.WriteString(fmt.Sprintf("24h transactions: %d\n", m.Txns24h))
	sb.WriteString(fmt.Sprintf("24h price change: %.1f%%\n", m.PriceChange24h))
	sb.WriteString("\nAnswer with one word: high or low.")
	return sb.String()
}
