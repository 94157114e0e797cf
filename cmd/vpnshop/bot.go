package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/vpnshop-gateway/internal/bot"
	"github.com/DanielPopoola/vpnshop-gateway/internal/config"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram consumer that settles Stars payments",
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
			return runBot(ctx, cfg, botAPI, logger)
		},
	}
}

func runBot(ctx context.Context, cfg *config.Config, botAPI *tgbotapi.BotAPI, logger *slog.Logger) error {
	if cfg.Bot.HostURL == "" {
		return errors.New("bot.host_url is required to confirm payments")
	}

	client := bot.NewConfirmClient(cfg.Bot.HostURL, cfg.Server.InternalSecret, cfg.Bot.ConfirmTimeout)
	confirmer := bot.NewRetryConfirmer(client, cfg.Retry)
	consumer := bot.NewConsumer(botAPI, confirmer, cfg.Bot.PollTimeout, logger)

	logger.Info("bot authorized", "username", botAPI.Self.UserName, "host_url", cfg.Bot.HostURL)
	return consumer.Run(ctx)
}

func allCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run the HTTP API and the bot consumer in one process",
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

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return runServer(gctx, cfg, botAPI, logger) })
			g.Go(func() error { return runBot(gctx, cfg, botAPI, logger) })
			return g.Wait()
		},
	}
}
