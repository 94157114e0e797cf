package services

import (
	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderCommand struct {
	Plan     string
	Price    decimal.Decimal
	InitData string
}

type OrderResult struct {
	PayURL    string
	Verified  bool
	Duplicate bool
}

// WebhookEvent is one gateway callback. Token and Signature are the raw
// header values; Body is the exact request body used for signature checks.
type WebhookEvent struct {
	Token     string
	Signature string
	Body      []byte
	Invoice   domain.Invoice
}

type ConfirmCommand struct {
	Secret       string
	UserID       int64
	Plan         string
	Amount       decimal.Decimal
	ChargeID     string
	LanguageCode string
}

// IssueResult is the outcome of a webhook or confirmation. Status is set only
// when the event was acknowledged without issuing anything.
type IssueResult struct {
	Sent         bool
	CredentialID string
	Note         string
	Status       string
}

const NoteAlreadyProcessed = "already_processed"
