package handlers

import (
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application/services"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest"
)

// Handlers adapts HTTP requests to the payment services.
type Handlers struct {
	orderService   *services.OrderService
	webhookService *services.WebhookService
	confirmService *services.ConfirmService
	logger         *slog.Logger
}

func NewHandlers(
	orderService *services.OrderService,
	webhookService *services.WebhookService,
	confirmService *services.ConfirmService,
	logger *slog.Logger,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		orderService:   orderService,
		webhookService: webhookService,
		confirmService: confirmService,
		logger:         logger,
	}
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

// Health godoc
// @Summary Liveness check
// @Tags ops
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, HealthResponse{OK: true}, h.logger)
}

// IssueResponse is shared by the webhook and the Stars confirmation.
type IssueResponse struct {
	OK      bool   `json:"ok"`
	Sent    *bool  `json:"sent,omitempty"`
	CredsID string `json:"creds_id,omitempty"`
	Note    string `json:"note,omitempty"`
	Status  string `json:"status,omitempty"`
}

func toIssueResponse(res *services.IssueResult) IssueResponse {
	resp := IssueResponse{OK: true, Note: res.Note, Status: res.Status}
	if res.CredentialID != "" {
		sent := res.Sent
		resp.Sent = &sent
		resp.CredsID = res.CredentialID
	}
	return resp
}
