package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenscout/internal/model"
)

type stubStrategy struct {
	name   string
	signal model.MarketSignal
	panics bool
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) Analyze(context.Context, string, model.TokenMetrics, *model.PositionInfo) model.MarketSignal {
	if s.panics {
		panic("index out of range")
	}
	return s.signal
}

func TestEngineRunsAllStrategies(t *testing.T) {
	e := NewEngine(nil,
		stubStrategy{name: "a", signal: model.MarketSignal{Action: model.ActionBuy, Confidence: 0.8}},
		stubStrategy{name: "b", signal: model.MarketSignal{Action: model.ActionHold, Confidence: 0.4}},
	)

	signals := e.Analyze(context.Background(), "addr", model.TokenMetrics{}, nil)

	require.Len(t, signals, 2)
	assert.Equal(t, model.ActionBuy, signals[0].Action)
	assert.Equal(t, model.ActionHold, signals[1].Action)
}

func TestEngineContainsPanic(t *testing.T) {
	e := NewEngine(nil,
		stubStrategy{name: "broken", panics: true},
		stubStrategy{name: "fine", signal: model.MarketSignal{Action: model.ActionBuy, Confidence: 0.7}},
	)

	signals := e.Analyze(context.Background(), "addr", model.TokenMetrics{}, nil)

	require.Len(t, signals, 2)
	assert.Equal(t, model.ActionHold, signals[0].Action)
	assert.Zero(t, signals[0].Confidence)
	assert.Equal(t, model.ActionBuy, signals[1].Action, "a panicking strategy must not stop the others")
}
