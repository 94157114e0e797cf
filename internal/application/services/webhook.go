package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/DanielPopoola/vpnshop-gateway/internal/idempotency"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/telegram"
)

type WebhookConfig struct {
	// Token is compared with the X-Webhook-Token header. Empty disables it.
	Token string
	// APIToken keys the native crypto-pay-api-signature check when
	// VerifySignature is set.
	APIToken        string
	VerifySignature bool
}

type WebhookService struct {
	fulfiller
	store  *idempotency.Store
	config WebhookConfig
}

func NewWebhookService(
	store *idempotency.Store,
	issuer application.CredentialIssuer,
	ledger application.IssuanceLedger,
	notifier application.Notifier,
	config WebhookConfig,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		fulfiller: fulfiller{
			issuer:   issuer,
			ledger:   ledger,
			notifier: notifier,
			logger:   loggerOrDefault(logger),
		},
		store:  store,
		config: config,
	}
}

// Process handles one gateway callback. A paid invoice yields exactly one
// credential while its idempotency record is live; every other status is
// acknowledged and ignored.
func (s *WebhookService) Process(ctx context.Context, event WebhookEvent) (*IssueResult, error) {
	if err := s.authorize(event); err != nil {
		s.logger.Warn("webhook rejected", "invoice_id", event.Invoice.ID, "error", err)
		return nil, application.NewUnauthorizedError(err)
	}

	inv := event.Invoice
	if domain.ClassifyStatus(inv.RawStatus) != domain.InvoicePaid {
		s.logger.Info("webhook ignored", "invoice_id", inv.ID, "status", inv.RawStatus)
		return &IssueResult{Status: inv.RawStatus}, nil
	}

	correlation, ok := domain.ResolveCorrelation(inv)
	if !ok {
		s.logger.Warn("paid invoice without recoverable user", "invoice_id", inv.ID)
		return nil, application.NewNoUserError(nil)
	}
	if inv.ID == "" {
		return nil, application.NewBadRequestError(domain.NewMissingRequiredFieldError("invoice_id"))
	}

	// The key is claimed before issuing so a concurrent redelivery stops here.
	claim, claimed := s.store.Claim(invoiceKey(inv.ID))
	if !claimed {
		s.logger.Info("webhook already processed", "invoice_id", inv.ID)
		return &IssueResult{Note: NoteAlreadyProcessed}, nil
	}

	plan := correlation.Plan
	if plan == "" {
		plan = domain.PlanFromDescription(inv.Description)
	}

	result, err := s.fulfil(ctx, domain.SourceCryptoPay, inv.ID, plan, correlation.UserID, telegram.LangRU)
	if err != nil {
		s.store.Release(claim)
		return nil, err
	}
	s.store.Complete(claim, result.CredentialID)
	return result, nil
}

func (s *WebhookService) authorize(event WebhookEvent) error {
	if s.config.Token != "" && !equalSecret(event.Token, s.config.Token) {
		return errors.New("webhook token mismatch")
	}
	if s.config.VerifySignature {
		if !ValidGatewaySignature(event.Body, event.Signature, s.config.APIToken) {
			return errors.New("webhook signature mismatch")
		}
	}
	return nil
}

// ValidGatewaySignature checks the crypto-pay-api-signature header: a hex
// HMAC-SHA256 of the raw body keyed with SHA256 of the API token.
func ValidGatewaySignature(body []byte, signature, apiToken string) bool {
	received, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(received) == 0 {
		return false
	}
	key := sha256.Sum256([]byte(apiToken))
	mac := hmac.New(sha256.New, key[:])
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), received)
}

func equalSecret(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func invoiceKey(id string) string {
	return "invoice:" + id
}
