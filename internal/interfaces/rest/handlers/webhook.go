package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/application/services"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/cryptopay"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest"
)

const (
	WebhookTokenHeader = "X-Webhook-Token"
	maxWebhookBytes    = 1 << 20
)

// CryptoPayWebhook godoc
// @Summary Receive a Crypto Pay invoice update
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Webhook-Token header string false "Shared webhook token"
// @Param crypto-pay-api-signature header string false "Gateway body signature"
// @Success 200 {object} IssueResponse
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403 {object} rest.ErrorResponse
// @Failure 500 {object} rest.ErrorResponse
// @Router /cryptopay/webhook [post]
func (h *Handlers) CryptoPayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		rest.WriteError(w, application.NewBadRequestError(fmt.Errorf("read body: %w", err)), h.logger)
		return
	}

	invoice, err := cryptopay.ParseWebhook(body)
	if err != nil {
		rest.WriteError(w, application.NewBadRequestError(err), h.logger)
		return
	}

	res, err := h.webhookService.Process(r.Context(), services.WebhookEvent{
		Token:     r.Header.Get(WebhookTokenHeader),
		Signature: r.Header.Get(cryptopay.SignatureHeader),
		Body:      body,
		Invoice:   invoice,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toIssueResponse(res), h.logger)
}
