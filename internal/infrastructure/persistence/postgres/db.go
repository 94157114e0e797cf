package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/vpnshop-gateway/internal/config"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB holds the pool behind the issuance ledger. It is only opened when
// database.enabled is set.
type DB struct {
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

// Connect builds the pool from cfg and returns only after Postgres has
// answered a ping.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	poolCfg, err := cfg.PgxConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("ledger database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("ledger database unreachable", "host", cfg.Host, "database", cfg.Name, "error", err)
		return nil, fmt.Errorf("ledger database ping: %w", err)
	}

	logger.Info("ledger database ready",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
		"max_conns", poolCfg.MaxConns,
	)
	return &DB{Pool: pool, logger: logger}, nil
}

// Close drains the pool. Called once on shutdown after the HTTP server stops.
func (db *DB) Close() {
	db.Pool.Close()
	db.logger.Info("ledger database closed")
}

// IsUniqueViolation reports whether err is Postgres refusing a second ledger
// row for the same payment.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.UniqueViolation
}
