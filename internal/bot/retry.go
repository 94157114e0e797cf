package bot

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/DanielPopoola/vpnshop-gateway/internal/config"
)

// RetryConfirmer retries transient confirm failures. Retrying is safe
// because the server deduplicates on charge_id.
type RetryConfirmer struct {
	inner      Confirmer
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryConfirmer(inner Confirmer, cfg config.RetryConfig) *RetryConfirmer {
	maxRetries := int(cfg.MaxRetries)
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryConfirmer{
		inner:      inner,
		baseDelay:  cfg.BaseDelay,
		maxRetries: maxRetries,
	}
}

func (r *RetryConfirmer) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	return retry(r, ctx, func(ctx context.Context) (*ConfirmResponse, error) {
		return r.inner.Confirm(ctx, req)
	})
}

func retry[T any](r *RetryConfirmer, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// Server side 5xx and transport failures are retried. Any other answer from
// the server is final.
func isRetryable(err error) bool {
	if confirmErr, ok := IsConfirmError(err); ok {
		return confirmErr.StatusCode >= 500
	}
	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetryConfirmer) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)
	if r.baseDelay <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int63n(int64(r.baseDelay)))
	return base + jitter
}
