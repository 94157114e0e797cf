package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

// InvoiceRequest is what the order flow asks the payment gateway for.
type InvoiceRequest struct {
	Amount        decimal.Decimal
	Description   string
	HiddenMessage string
	Payload       string
}

// InvoiceGateway is the port for the external payment gateway.
type InvoiceGateway interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*domain.Invoice, error)
}

// Notifier delivers a chat message. It reports failure instead of returning
// an error; callers decide whether that is fatal.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) bool
}

type CredentialIssuer interface {
	Issue(plan string, userID int64) (domain.Credential, error)
}

// IssuanceRecord is one row of the audit trail. It never carries secrets.
type IssuanceRecord struct {
	CredentialID string
	UserID       int64
	Plan         string
	Source       domain.IssuanceSource
	Reference    string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

func NewIssuanceRecord(cred domain.Credential, source domain.IssuanceSource, reference string) IssuanceRecord {
	return IssuanceRecord{
		CredentialID: cred.ID,
		UserID:       cred.UserID,
		Plan:         cred.Plan,
		Source:       source,
		Reference:    reference,
		IssuedAt:     cred.IssuedAt,
		ExpiresAt:    cred.ExpiresAt,
	}
}

// IssuanceLedger is the port for the optional issuance audit trail.
type IssuanceLedger interface {
	Record(ctx context.Context, rec IssuanceRecord) error
}

// NopLedger is used when no database is configured.
type NopLedger struct{}

func (NopLedger) Record(context.Context, IssuanceRecord) error { return nil }
