package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/DanielPopoola/vpnshop-gateway/internal/idempotency"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/telegram"
	"github.com/DanielPopoola/vpnshop-gateway/internal/initdata"
)

type OrderService struct {
	store        *idempotency.Store
	verifier     *initdata.Verifier
	gateway      application.InvoiceGateway
	notifier     application.Notifier
	requireValid bool
	logger       *slog.Logger
}

func NewOrderService(
	store *idempotency.Store,
	verifier *initdata.Verifier,
	gateway application.InvoiceGateway,
	notifier application.Notifier,
	requireValid bool,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		store:        store,
		verifier:     verifier,
		gateway:      gateway,
		notifier:     notifier,
		requireValid: requireValid,
		logger:       loggerOrDefault(logger),
	}
}

// PlaceOrder creates an invoice for the launching user and sends them the
// pay link. Requests sharing a query_id create at most one invoice while the
// idempotency record is live.
func (s *OrderService) PlaceOrder(ctx context.Context, cmd OrderCommand) (*OrderResult, error) {
	if err := cmd.validate(); err != nil {
		return nil, application.NewBadRequestError(err)
	}

	verification := s.verifier.Verify(cmd.InitData)
	if !verification.Valid && s.requireValid {
		return nil, application.NewInvalidSignatureError(errors.New(verification.Reason))
	}
	if !verification.Valid {
		s.logger.Warn("order with unverified launch data", "reason", verification.Reason)
	}

	payload, err := initdata.Parse(cmd.InitData)
	if err != nil {
		return nil, application.NewNoUserError(err)
	}

	order := domain.Order{Plan: cmd.Plan, Price: cmd.Price}
	order.QueryID, _ = payload.QueryID()

	var claim *idempotency.Entry
	if order.QueryID != "" {
		entry, claimed := s.store.Claim(orderKey(order.QueryID))
		if !claimed {
			return s.awaitDuplicate(ctx, entry, verification.Valid)
		}
		claim = entry
	}

	completed := false
	defer func() {
		if claim != nil && !completed {
			s.store.Release(claim)
		}
	}()

	user, ok := payload.User()
	if !ok {
		return nil, application.NewNoUserError(nil)
	}
	order.UserID = user.ID
	order.LanguageCode = user.LanguageCode

	correlation := domain.Correlation{UserID: order.UserID, Plan: order.Plan}
	invoice, err := s.gateway.CreateInvoice(ctx, application.InvoiceRequest{
		Amount:        order.Price,
		Description:   domain.InvoiceDescription(order.Plan),
		HiddenMessage: correlation.HiddenMessage(),
		Payload:       correlation.Encode(),
	})
	if err != nil {
		s.logger.Error("invoice creation failed", "user_id", order.UserID, "plan", order.Plan, "error", err)
		return nil, application.NewInvoiceFailedError(err)
	}

	if claim != nil {
		s.store.Complete(claim, invoice.PayURL)
	}
	completed = true

	s.logger.Info("invoice created",
		"invoice_id", invoice.ID,
		"user_id", order.UserID,
		"plan", order.Plan,
		"verified", verification.Valid,
	)

	lang := telegram.LangFromCode(order.LanguageCode)
	if !s.notifier.Send(ctx, order.UserID, telegram.PayLinkMessage(lang, order.Plan, order.Price, invoice.PayURL)) {
		return nil, application.NewNotifyFailedError()
	}

	return &OrderResult{PayURL: invoice.PayURL, Verified: verification.Valid}, nil
}

// awaitDuplicate returns the pay link of the request that holds the key,
// waiting for it if that request is still talking to the gateway.
func (s *OrderService) awaitDuplicate(ctx context.Context, entry *idempotency.Entry, verified bool) (*OrderResult, error) {
	payURL, err := entry.Wait(ctx)
	if err != nil {
		if errors.Is(err, idempotency.ErrReleased) {
			s.logger.Info("duplicate order lost its original request", "key", entry.Key)
		}
		return nil, application.NewRequestProcessingError(err)
	}
	return &OrderResult{PayURL: payURL, Verified: verified, Duplicate: true}, nil
}

func (cmd OrderCommand) validate() error {
	if cmd.Plan == "" {
		return domain.NewMissingRequiredFieldError("plan")
	}
	if !cmd.Price.IsPositive() {
		return domain.NewMissingRequiredFieldError("price")
	}
	if cmd.InitData == "" {
		return domain.NewMissingRequiredFieldError("initData")
	}
	return nil
}

func orderKey(queryID string) string {
	return "order:" + queryID
}
