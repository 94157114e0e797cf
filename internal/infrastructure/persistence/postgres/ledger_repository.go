package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
)

// ErrAlreadyRecorded means the payment reference already has a row.
var ErrAlreadyRecorded = errors.New("issuance already recorded")

// LedgerRepository is the audit trail of issued credentials. It is written
// after the in-memory idempotency check and never consulted for it.
type LedgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

var _ application.IssuanceLedger = (*LedgerRepository)(nil)

func (r *LedgerRepository) Record(ctx context.Context, rec application.IssuanceRecord) error {
	query := `
		INSERT INTO credential_issuances (credential_id, user_id, plan, source, reference, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var reference *string
	if rec.Reference != "" {
		reference = &rec.Reference
	}

	_, err := r.db.Pool.Exec(ctx, query,
		rec.CredentialID,
		rec.UserID,
		rec.Plan,
		string(rec.Source),
		reference,
		rec.IssuedAt,
		rec.ExpiresAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrAlreadyRecorded
		}
		return fmt.Errorf("failed to record issuance: %w", err)
	}
	return nil
}

// Issuance is a ledger row as read back.
type Issuance struct {
	CredentialID string
	UserID       int64
	Plan         string
	Source       domain.IssuanceSource
	Reference    string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// FindByUser lists a user's issuances, newest first.
func (r *LedgerRepository) FindByUser(ctx context.Context, userID int64, limit int) ([]Issuance, error) {
	query := `
		SELECT credential_id::text, user_id, plan, source, COALESCE(reference, ''), issued_at, expires_at
		FROM credential_issuances
		WHERE user_id = $1
		ORDER BY issued_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query issuances: %w", err)
	}
	defer rows.Close()

	var out []Issuance
	for rows.Next() {
		var (
			i      Issuance
			source string
		)
		if err := rows.Scan(&i.CredentialID, &i.UserID, &i.Plan, &source, &i.Reference, &i.IssuedAt, &i.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan issuance: %w", err)
		}
		i.Source = domain.IssuanceSource(source)
		out = append(out, i)
	}
	return out, rows.Err()
}
