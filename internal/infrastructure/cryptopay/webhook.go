package cryptopay

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
)

const (
	// SignatureHeader carries the gateway's HMAC of the raw update body.
	SignatureHeader = "crypto-pay-api-signature"

	updateInvoicePaid = "invoice_paid"
)

// webhookEnvelope covers the three shapes we accept: a native update with
// the invoice under payload, an object under invoice, or flat fields.
type webhookEnvelope struct {
	UpdateType    string          `json:"update_type"`
	InvoiceID     flexString      `json:"invoice_id"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	HiddenMessage string          `json:"hidden_message"`
	Invoice       *invoiceDTO     `json:"invoice"`
	Payload       json.RawMessage `json:"payload"`
}

// ParseWebhook extracts the invoice snapshot from a callback body. Flat
// fields win over the nested invoice object.
func ParseWebhook(body []byte) (domain.Invoice, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.Invoice{}, fmt.Errorf("decode webhook: %w", err)
	}

	if isObject(env.Payload) {
		var dto invoiceDTO
		if err := json.Unmarshal(env.Payload, &dto); err != nil {
			return domain.Invoice{}, fmt.Errorf("decode webhook invoice: %w", err)
		}
		if dto.Status == "" && env.UpdateType == updateInvoicePaid {
			dto.Status = "paid"
		}
		return toDomain(dto), nil
	}

	dto := invoiceDTO{
		InvoiceID:     env.InvoiceID,
		Status:        env.Status,
		Description:   env.Description,
		HiddenMessage: env.HiddenMessage,
	}
	if len(env.Payload) > 0 {
		var token string
		if err := json.Unmarshal(env.Payload, &token); err == nil {
			dto.Payload = token
		}
	}
	if nested := env.Invoice; nested != nil {
		dto.InvoiceID = firstNonEmpty(dto.InvoiceID, nested.InvoiceID)
		dto.Status = firstNonEmpty(dto.Status, nested.Status)
		dto.Description = firstNonEmpty(dto.Description, nested.Description)
		dto.HiddenMessage = firstNonEmpty(dto.HiddenMessage, nested.HiddenMessage)
		dto.Payload = firstNonEmpty(dto.Payload, nested.Payload)
		dto.PayURL = nested.PayURL
		dto.BotInvoiceURL = nested.BotInvoiceURL
	}
	return toDomain(dto), nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func firstNonEmpty[T ~string](a, b T) T {
	if a != "" {
		return a
	}
	return b
}
