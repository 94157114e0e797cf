package services

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/telegram"
)

// fulfiller issues a credential, records it and hands it to the user. Both
// payment rails end here once their own deduplication has passed.
type fulfiller struct {
	issuer   application.CredentialIssuer
	ledger   application.IssuanceLedger
	notifier application.Notifier
	logger   *slog.Logger
}

func (f *fulfiller) fulfil(
	ctx context.Context,
	source domain.IssuanceSource,
	reference string,
	plan string,
	userID int64,
	lang telegram.Lang,
) (*IssueResult, error) {
	cred, err := f.issuer.Issue(plan, userID)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	if err := f.ledger.Record(ctx, application.NewIssuanceRecord(cred, source, reference)); err != nil {
		f.logger.Warn("failed to record issuance",
			"credential_id", cred.ID,
			"source", source,
			"reference", reference,
			"error", err,
		)
	}

	sent := f.notifier.Send(ctx, userID, telegram.CredentialsMessage(lang, cred))
	if !sent {
		f.logger.Error("credentials issued but not delivered",
			"credential_id", cred.ID,
			"user_id", userID,
			"source", source,
			"reference", reference,
		)
	} else {
		f.logger.Info("credentials issued",
			"credential_id", cred.ID,
			"user_id", userID,
			"plan", cred.Plan,
			"source", source,
			"expires_at", cred.ExpiresAt,
		)
	}

	return &IssueResult{Sent: sent, CredentialID: cred.ID}, nil
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
