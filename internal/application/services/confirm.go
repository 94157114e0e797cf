package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/DanielPopoola/vpnshop-gateway/internal/idempotency"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/telegram"
)

// ConfirmService fulfils Telegram Stars payments reported by the bot.
type ConfirmService struct {
	fulfiller
	store  *idempotency.Store
	secret string
}

func NewConfirmService(
	store *idempotency.Store,
	issuer application.CredentialIssuer,
	ledger application.IssuanceLedger,
	notifier application.Notifier,
	secret string,
	logger *slog.Logger,
) *ConfirmService {
	return &ConfirmService{
		fulfiller: fulfiller{
			issuer:   issuer,
			ledger:   ledger,
			notifier: notifier,
			logger:   loggerOrDefault(logger),
		},
		store:  store,
		secret: secret,
	}
}

func (s *ConfirmService) Confirm(ctx context.Context, cmd ConfirmCommand) (*IssueResult, error) {
	if s.secret != "" && !equalSecret(cmd.Secret, s.secret) {
		s.logger.Warn("confirmation rejected", "user_id", cmd.UserID)
		return nil, application.NewUnauthorizedError(errors.New("internal secret mismatch"))
	}
	if cmd.UserID <= 0 {
		return nil, application.NewBadRequestError(domain.NewMissingRequiredFieldError("user_id"))
	}

	// Charges without an id cannot be told apart, so only identified ones
	// are claimed.
	var claim *idempotency.Entry
	if cmd.ChargeID != "" {
		entry, claimed := s.store.Claim(starsKey(cmd.ChargeID))
		if !claimed {
			s.logger.Info("stars payment already processed", "charge_id", cmd.ChargeID)
			return &IssueResult{Note: NoteAlreadyProcessed}, nil
		}
		claim = entry
	}

	plan := cmd.Plan
	if plan == "" {
		plan = domain.DefaultPlan
	}

	s.logger.Info("stars payment confirmed",
		"user_id", cmd.UserID,
		"plan", plan,
		"amount", cmd.Amount.String(),
		"charge_id", cmd.ChargeID,
	)
	result, err := s.fulfil(ctx, domain.SourceStars, cmd.ChargeID, plan, cmd.UserID, telegram.LangFromCode(cmd.LanguageCode))
	if err != nil {
		s.store.Release(claim)
		return nil, err
	}
	s.store.Complete(claim, result.CredentialID)
	return result, nil
}

func starsKey(chargeID string) string {
	return "stars:" + chargeID
}
