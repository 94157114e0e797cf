package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/application/services"
	"github.com/DanielPopoola/vpnshop-gateway/internal/config"
	"github.com/DanielPopoola/vpnshop-gateway/internal/credentials"
	"github.com/DanielPopoola/vpnshop-gateway/internal/idempotency"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/cryptopay"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/telegram"
	"github.com/DanielPopoola/vpnshop-gateway/internal/initdata"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest/server"
	"github.com/DanielPopoola/vpnshop-gateway/internal/worker"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (orders, Crypto Pay webhooks, Stars confirmations)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			botAPI, err := telegram.NewBotAPI(cfg.Telegram)
			if err != nil {
				return fmt.Errorf("failed to start telegram client: %w", err)
			}
			return runServer(ctx, cfg, botAPI, logger)
		},
	}
}

// runServer serves until ctx is cancelled, then drains in-flight requests.
func runServer(ctx context.Context, cfg *config.Config, botAPI *tgbotapi.BotAPI, logger *slog.Logger) error {
	logger.Info("starting gateway service",
		"port", cfg.Server.Port,
		"env", cfg.Primary.Env,
		"log_level", cfg.Logger.Level,
	)

	ledger, closeLedger, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLedger()

	store := idempotency.NewStore(cfg.Idempotency.TTL)
	go worker.NewSweepWorker(store, cfg.Idempotency.SweepInterval, logger).Start(ctx)
	issuer := credentials.NewIssuer()
	notifier := telegram.NewNotifier(botAPI, logger)
	verifier := initdata.NewVerifier(cfg.Telegram.BotToken, cfg.Telegram.InitDataMaxAge, logger)
	gateway := cryptopay.NewClient(cfg.CryptoPay)

	orderService := services.NewOrderService(store, verifier, gateway, notifier, cfg.Telegram.RequireValidInitData, logger)
	webhookService := services.NewWebhookService(store, issuer, ledger, notifier, services.WebhookConfig{
		Token:           cfg.CryptoPay.WebhookToken,
		APIToken:        cfg.CryptoPay.APIToken,
		VerifySignature: cfg.CryptoPay.VerifySignature,
	}, logger)
	confirmService := services.NewConfirmService(store, issuer, ledger, notifier, cfg.Server.InternalSecret, logger)

	h := handlers.NewHandlers(orderService, webhookService, confirmService, logger)
	router, err := server.NewRouter(ctx, h, cfg.Server, cfg.CryptoPay.WebhookToken, logger)
	if err != nil {
		return err
	}
	srv := server.NewHTTPServer(cfg.Server, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}
	logger.Info("server exited")
	return nil
}

// openLedger connects the issuance ledger when a database is configured and
// falls back to a no-op otherwise.
func openLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (application.IssuanceLedger, func(), error) {
	if !cfg.Database.Enabled {
		logger.Info("database disabled, issuances are not recorded")
		return application.NopLedger{}, func() {}, nil
	}

	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgres.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewLedgerRepository(db), db.Close, nil
}
