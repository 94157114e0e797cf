// Package credentials generates VPN access material. It stands in for a call
// to the provisioning backend, so it performs no I/O.
package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/google/uuid"
)

const (
	passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	passwordLength   = 16
	secretBytes      = 32
	usernameBytes    = 5
)

// Issuer derives entitlement windows and random credentials.
type Issuer struct {
	now    func() time.Time
	random io.Reader
}

type Option func(*Issuer)

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// WithRandom swaps the entropy source. It must stay cryptographically secure
// outside of tests.
func WithRandom(r io.Reader) Option {
	return func(i *Issuer) { i.random = r }
}

func NewIssuer(opts ...Option) *Issuer {
	i := &Issuer{now: time.Now, random: rand.Reader}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue creates a credential for userID on plan. Unknown plans get the
// default entitlement window.
func (i *Issuer) Issue(plan string, userID int64) (domain.Credential, error) {
	if plan == "" {
		plan = domain.DefaultPlan
	}
	duration, _ := domain.PlanDuration(plan)

	id, err := uuid.NewRandomFromReader(i.random)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("generate credential id: %w", err)
	}

	userSuffix, err := i.hex(usernameBytes)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("generate username: %w", err)
	}
	password, err := i.password()
	if err != nil {
		return domain.Credential{}, fmt.Errorf("generate password: %w", err)
	}
	secret, err := i.hex(secretBytes)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("generate secret: %w", err)
	}

	issuedAt := i.now().UTC()
	return domain.Credential{
		ID:        id.String(),
		UserID:    userID,
		Plan:      plan,
		Username:  fmt.Sprintf("vpn%d_%s", userID, userSuffix),
		Password:  password,
		Secret:    secret,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(duration),
	}, nil
}

func (i *Issuer) hex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(i.random, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (i *Issuer) password() (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, passwordLength)
	for n := range out {
		idx, err := rand.Int(i.random, max)
		if err != nil {
			return "", err
		}
		out[n] = passwordAlphabet[idx.Int64()]
	}
	return string(out), nil
}
