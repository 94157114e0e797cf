// Package bot runs the Telegram update loop that settles Stars payments.
// Menus, commands and other conversation live elsewhere; updates that are
// not part of a payment are ignored.
package bot

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// starsCurrency is priced in whole stars; every other currency arrives in
// minor units.
const starsCurrency = "XTR"

// Messenger is the part of *tgbotapi.BotAPI the consumer uses.
type Messenger interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Consumer struct {
	bot         Messenger
	confirmer   Confirmer
	pollTimeout int
	logger      *slog.Logger
}

func NewConsumer(bot Messenger, confirmer Confirmer, pollTimeout int, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		bot:         bot,
		confirmer:   confirmer,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}

// Run handles updates one at a time until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	u.AllowedUpdates = []string{"message", "pre_checkout_query"}

	updates := c.bot.GetUpdatesChan(u)
	c.logger.Info("bot consumer started", "poll_timeout", c.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			c.bot.StopReceivingUpdates()
			c.logger.Info("bot consumer stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.Handle(ctx, update)
		}
	}
}

func (c *Consumer) Handle(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		c.answerPreCheckout(update.PreCheckoutQuery)
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		c.settle(ctx, update.Message)
	}
}

func (c *Consumer) answerPreCheckout(q *tgbotapi.PreCheckoutQuery) {
	_, err := c.bot.Request(tgbotapi.PreCheckoutConfig{PreCheckoutQueryID: q.ID, OK: true})
	if err != nil {
		c.logger.Error("failed to answer pre-checkout", "query_id", q.ID, "error", err)
	}
}

func (c *Consumer) settle(ctx context.Context, msg *tgbotapi.Message) {
	payment := msg.SuccessfulPayment
	lang := telegram.LangRU
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
		lang = telegram.LangFromCode(msg.From.LanguageCode)
	}
	if userID == 0 && msg.Chat != nil {
		userID = msg.Chat.ID
	}

	req := ConfirmRequest{
		UserID:       userID,
		Plan:         planFromPayload(payment.InvoicePayload),
		Amount:       paidAmount(payment.Currency, payment.TotalAmount),
		ChargeID:     payment.TelegramPaymentChargeID,
		LanguageCode: string(lang),
	}

	c.reply(msg, telegram.PaymentReceivedMessage(lang))

	resp, err := c.confirmer.Confirm(ctx, req)
	if err != nil {
		c.logger.Error("stars confirmation failed",
			"user_id", req.UserID,
			"charge_id", req.ChargeID,
			"error", err,
		)
		c.reply(msg, telegram.ConfirmFailedMessage(lang))
		return
	}

	c.logger.Info("stars payment settled",
		"user_id", req.UserID,
		"charge_id", req.ChargeID,
		"creds_id", resp.CredsID,
		"note", resp.Note,
	)
	c.reply(msg, telegram.ConfirmDoneMessage(lang))
}

func (c *Consumer) reply(msg *tgbotapi.Message, text string) {
	if msg.Chat == nil {
		return
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := c.bot.Send(out); err != nil {
		c.logger.Warn("failed to reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

func planFromPayload(payload string) string {
	if payload == "" {
		return domain.DefaultPlan
	}
	return payload
}

func paidAmount(currency string, total int) decimal.Decimal {
	if currency == starsCurrency {
		return decimal.NewFromInt(int64(total))
	}
	return decimal.New(int64(total), -2)
}
