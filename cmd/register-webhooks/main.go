// Command register-webhooks subscribes every installed shop to the webhook
// topics the relay handles. Topics already subscribed at the app's webhook
// address are left alone, so the command can be re-run at any time.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gooscale-shopify-relay/internal/application"
	"gooscale-shopify-relay/internal/config"
	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/infrastructure/repository"
	shopifyinfra "gooscale-shopify-relay/internal/infrastructure/shopify"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cmd := &cli.Command{
		Name:  "register-webhooks",
		Usage: "subscribe installed shops to the app's webhook topics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "shop",
				Usage: "only register webhooks for this shop domain",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 5 * time.Minute,
				Usage: "give up after this long",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd.String("shop"), cmd.Duration("timeout"), logger)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Fatal().Err(err).Msg("Webhook registration failed")
	}
}

func run(ctx context.Context, shop string, timeout time.Duration, logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	store, err := repository.OpenSessionStore(ctx, cfg.DatabaseURL, cfg.DatabaseName, logger)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	client := shopifyinfra.NewClient(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret, &http.Client{Timeout: cfg.RelayTimeout}, logger)
	manager := application.NewWebhookManager(client, cfg.WebhookAddress(), logger)

	if shop != "" {
		return registerShop(ctx, store, manager, shopifyinfra.NewShopValidator(cfg.ShopCustomDomain), shop, logger)
	}

	results, failed, err := manager.RegisterAll(ctx, store)
	if err != nil {
		return err
	}
	for _, result := range results {
		logResult(logger, result)
	}
	logger.Info().
		Int("shops", len(results)).
		Int("failed", failed).
		Str("address", cfg.WebhookAddress()).
		Msg("Webhook registration finished")
	if failed > 0 {
		return fmt.Errorf("webhook registration failed for %d shop(s)", failed)
	}
	return nil
}

func registerShop(ctx context.Context, store *repository.SessionStore, manager *application.WebhookManager, shops shopifyinfra.ShopValidator, shop string, logger zerolog.Logger) error {
	shop, err := shops.Normalize(shop)
	if err != nil {
		return err
	}
	session, err := store.LoadSession(ctx, shop)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("%s: %w", shop, domain.ErrNoSession)
	}

	result, err := manager.RegisterDefaults(ctx, session)
	if result != nil {
		logResult(logger, result)
	}
	if err != nil {
		return fmt.Errorf("failed to register webhooks for %s: %w", shop, err)
	}
	return nil
}

func logResult(logger zerolog.Logger, result *application.RegistrationResult) {
	logger.Info().
		Str("shop", result.Shop).
		Strs("created", result.Created).
		Strs("skipped", result.Skipped).
		Msg("Webhooks registered")
}
