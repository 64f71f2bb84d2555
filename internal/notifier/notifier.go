// Package notifier delivers trade signals to the operator.
package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tokenscout/internal/model"
)

// Notifier pushes one signal somewhere an operator will see it.
type Notifier interface {
	Notify(ctx context.Context, token string, sig model.MarketSignal) error
}

// Log writes signals to the structured log only. It is the fallback when
// no Telegram credentials are configured.
type Log struct {
	logger zerolog.Logger
}

func NewLog() *Log {
	return &Log{logger: log.With().Str("component", "notifier").Logger()}
}

func (l *Log) Notify(_ context.Context, token string, sig model.MarketSignal) error {
	l.logger.Info().
		Str("token", token).
		Str("action", string(sig.Action)).
		Float64("confidence", sig.Confidence).
		Str("reason", sig.Reason).
		Msg("Signal")
	return nil
}

// Telegram sends signals to a chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "notifier").Logger(),
	}, nil
}

func (t *Telegram) Notify(_ context.Context, token string, sig model.MarketSignal) error {
	text := fmt.Sprintf("%s %s\nconfidence: %.2f\n%s", sig.Action, token, sig.Confidence, sig.Reason)
	if sig.Amount > 0 {
		text += fmt.Sprintf("\namount: %.4f", sig.Amount)
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.logger.Warn().Err(err).Str("token", token).Msg("Telegram send failed")
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
