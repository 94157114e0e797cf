// Package telegram talks to the Telegram Bot API.
package telegram

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NewBotAPI builds a client whose every call is bounded by cfg.Timeout. It
// calls getMe once, so a bad token fails here.
func NewBotAPI(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPIWithClient(cfg.BotToken, cfg.APIEndpoint, &http.Client{Timeout: cfg.Timeout})
}

type Notifier struct {
	bot    Sender
	logger *slog.Logger
}

func NewNotifier(bot Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{bot: bot, logger: logger}
}

var _ application.Notifier = (*Notifier)(nil)

// Send delivers an HTML message to chatID. Failures are logged and reported
// as false; nothing is retried.
func (n *Notifier) Send(ctx context.Context, chatID int64, text string) bool {
	if err := ctx.Err(); err != nil {
		n.logger.Warn("notification skipped", "chat_id", chatID, "error", err)
		return false
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("notification failed", "chat_id", chatID, "error", err)
		return false
	}
	return true
}
