package strategy

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/config"
	"tokenscout/internal/model"
	"tokenscout/internal/risk"
)

const (
	dcaBuyConfidence  = 0.6
	dcaSellConfidence = 0.7
)

type dcaState struct {
	lastBuy     time.Time
	accumulated float64
}

// DCA accumulates a small fixed position in steady tokens and takes
// partial profit. State lives per token inside the strategy; the execution
// side must call Reset once a position fully closes.
type DCA struct {
	cfg    config.DCAConfig
	risk   risk.Scorer
	logger zerolog.Logger

	mu    sync.Mutex
	state map[string]*dcaState

	nowFn func() time.Time
}

func NewDCA(cfg config.DCAConfig, scorer risk.Scorer) *DCA {
	return &DCA{
		cfg:    cfg,
		risk:   scorer,
		logger: log.With().Str("component", "strategy.dca").Logger(),
		state:  make(map[string]*dcaState),
		nowFn:  time.Now,
	}
}

func (s *DCA) Name() string { return "dca" }

func (s *DCA) Analyze(ctx context.Context, token string, m model.TokenMetrics, pos *model.PositionInfo) model.MarketSignal {
	// Take-profit runs first and ignores the buy cooldown.
	if pos != nil && pos.PnLPercent > s.cfg.TakeProfitPercent {
		s.logger.Debug().Str("token", token).Float64("pnl", pos.PnLPercent).Msg("Partial take-profit")
		return model.MarketSignal{
			Action:     model.ActionSell,
			Confidence: dcaSellConfidence,
			Reason:     "partial take-profit",
			Amount:     pos.Amount * s.cfg.ExitFraction,
		}
	}

	if reason, ok := s.entryAllowed(ctx, token, m); !ok {
		return model.MarketSignal{
			Action:     model.ActionHold,
			Confidence: 0,
			Reason:     reason,
		}
	}

	s.mu.Lock()
	st := s.state[token]
	if st == nil {
		st = &dcaState{}
		s.state[token] = st
	}
	st.lastBuy = s.nowFn()
	st.accumulated += s.cfg.BuyIncrement
	accumulated := st.accumulated
	s.mu.Unlock()

	s.logger.Debug().Str("token", token).Float64("accumulated", accumulated).Msg("Incremental buy")
	return model.MarketSignal{
		Action:     model.ActionBuy,
		Confidence: dcaBuyConfidence,
		Reason:     "dca increment",
		Amount:     s.cfg.BuyIncrement,
	}
}

func (s *DCA) entryAllowed(ctx context.Context, token string, m model.TokenMetrics) (string, bool) {
	if m.LiquidityUSD < s.cfg.MinLiquidityUSD {
		return "liquidity below floor", false
	}
	if m.Volume24h < s.cfg.MinVolume24hUSD {
		return "volume below floor", false
	}
	if m.PriceChange24h < -s.cfg.MaxPriceDropPct || m.PriceChange24h > s.cfg.MaxPriceRisePct {
		return "price moved out of band", false
	}

	s.mu.Lock()
	st := s.state[token]
	if st != nil {
		if st.accumulated >= s.cfg.MaxAccumulated {
			s.mu.Unlock()
			return "position cap reached", false
		}
		if s.nowFn().Sub(st.lastBuy) < s.cfg.Cooldown {
			s.mu.Unlock()
			return "cooldown active", false
		}
	}
	s.mu.Unlock()

	// Risk check last, it is the only external call.
	score, err := s.risk.Score(ctx, token)
	if err != nil {
		s.logger.Warn().Err(err).Str("token", token).Bool("degraded", true).
			Msg("Risk score unavailable, skipping buy")
		return "risk score unavailable", false
	}
	if score >= s.cfg.MaxRiskScore {
		return "risk score too high", false
	}
	return "", true
}

// Reset clears a token's accumulation state. The execution side calls this
// when a position fully closes; without it the strategy keeps counting
// toward the cap.
func (s *DCA) Reset(token string) {
	s.mu.Lock()
	delete(s.state, token)
	s.mu.Unlock()
}
