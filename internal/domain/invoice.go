package domain

import "strings"

// InvoiceStatus is our reading of the gateway's status string.
type InvoiceStatus string

const (
	InvoiceCreated InvoiceStatus = "created"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOther   InvoiceStatus = "other"
)

// ClassifyStatus maps a raw gateway status. Only paid, confirmed and active
// count as settled.
func ClassifyStatus(raw string) InvoiceStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "confirmed", "active":
		return InvoicePaid
	case "created":
		return InvoiceCreated
	default:
		return InvoiceOther
	}
}

// Invoice is a snapshot of a gateway-owned invoice.
type Invoice struct {
	ID            string
	Status        InvoiceStatus
	RawStatus     string
	Description   string
	HiddenMessage string
	Payload       string
	PayURL        string
}
