package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credential is the access material handed to a paying user. Once sent it
// is the user's; nothing here revokes or renews it.
type Credential struct {
	ID        string
	UserID    int64
	Plan      string
	Username  string
	Password  string
	Secret    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuanceSource names the payment rail that paid for a credential.
type IssuanceSource string

const (
	SourceCryptoPay IssuanceSource = "cryptopay"
	SourceStars     IssuanceSource = "stars"
)

// Order is a verified request to buy plan at price.
type Order struct {
	Plan         string
	Price        decimal.Decimal
	QueryID      string
	UserID       int64
	LanguageCode string
}
