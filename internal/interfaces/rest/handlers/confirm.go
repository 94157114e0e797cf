package handlers

import (
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application/services"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

const InternalSecretHeader = "X-Internal-Secret"

type ConfirmRequest struct {
	UserID       int64           `json:"user_id"`
	Plan         string          `json:"plan"`
	Amount       decimal.Decimal `json:"amount"`
	ChargeID     string          `json:"charge_id"`
	LanguageCode string          `json:"language_code"`
}

// ConfirmStars godoc
// @Summary Confirm a Telegram Stars payment
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Internal-Secret header string false "Shared bot secret"
// @Param body body ConfirmRequest true "Confirmation"
// @Success 200 {object} IssueResponse
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403 {object} rest.ErrorResponse
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/confirm_stars [post]
func (h *Handlers) ConfirmStars(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	res, err := h.confirmService.Confirm(r.Context(), services.ConfirmCommand{
		Secret:       r.Header.Get(InternalSecretHeader),
		UserID:       req.UserID,
		Plan:         req.Plan,
		Amount:       req.Amount,
		ChargeID:     req.ChargeID,
		LanguageCode: req.LanguageCode,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toIssueResponse(res), h.logger)
}
