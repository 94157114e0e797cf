package handlers

import (
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application/services"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

type OrderRequest struct {
	Plan     string          `json:"plan" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	InitData string          `json:"initData" validate:"required"`
}

type OrderResponse struct {
	OK        bool   `json:"ok"`
	PayURL    string `json:"pay_url"`
	Verified  bool   `json:"verified"`
	Duplicate bool   `json:"duplicate"`
}

// CreateOrder godoc
// @Summary Create a Crypto Pay invoice for a plan
// @Tags payments
// @Accept json
// @Produce json
// @Param body body OrderRequest true "Order"
// @Success 200 {object} OrderResponse
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/order [post]
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	res, err := h.orderService.PlaceOrder(r.Context(), services.OrderCommand{
		Plan:     req.Plan,
		Price:    req.Price,
		InitData: req.InitData,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, OrderResponse{
		OK:        true,
		PayURL:    res.PayURL,
		Verified:  res.Verified,
		Duplicate: res.Duplicate,
	}, h.logger)
}
