package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gooscale-shopify-relay/internal/application"
	"gooscale-shopify-relay/internal/application/webhook_handlers"
	"gooscale-shopify-relay/internal/config"
	apiinfra "gooscale-shopify-relay/internal/infrastructure/api"
	"gooscale-shopify-relay/internal/infrastructure/gooscale"
	"gooscale-shopify-relay/internal/infrastructure/metrics"
	redisinfra "gooscale-shopify-relay/internal/infrastructure/redis"
	"gooscale-shopify-relay/internal/infrastructure/repository"
	shopifyinfra "gooscale-shopify-relay/internal/infrastructure/shopify"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped with error")
	}
	logger.Info().Msg("Server stopped")
}

func run(logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	displayAppname("gooscale relay")

	ctx := context.Background()

	// Session store, chosen by the DATABASE_URL scheme
	store, err := repository.OpenSessionStore(ctx, cfg.DatabaseURL, cfg.DatabaseName, logger)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	redisClient, err := redisinfra.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	httpClient := &http.Client{Timeout: cfg.RelayTimeout}
	m := metrics.New(prometheus.DefaultRegisterer)

	// Outbound clients
	relay := gooscale.NewClient(cfg.GooscaleAPIURL, cfg.GooscaleAPIKey, httpClient, logger, m)
	shopifyClient := shopifyinfra.NewClient(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret, httpClient, logger)

	shops := shopifyinfra.NewShopValidator(cfg.ShopCustomDomain)
	verifier := shopifyinfra.NewVerifier(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret)
	tokens := shopifyinfra.NewSessionTokenVerifier(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret, shops)
	oauth := shopifyinfra.NewOAuth(
		cfg.ShopifyAPIKey,
		cfg.ShopifyAPISecret,
		cfg.AppURL+"/auth/callback",
		cfg.ScopeString(),
		shopifyinfra.WithOAuthHTTPClient(httpClient),
	)

	// Application services
	webhookManager := application.NewWebhookManager(shopifyClient, cfg.WebhookAddress(), logger)
	shopifyService := application.NewShopifyService(
		store,
		redisinfra.NewStateStore(redisClient),
		oauth,
		verifier,
		shops,
		shopifyinfra.NewTokenManager(shopifyClient, logger),
		webhookManager,
		logger,
	)

	router, err := apiinfra.NewRouter(apiinfra.Deps{
		APIKey:          cfg.ShopifyAPIKey,
		MainAppURL:      cfg.GooscaleAPIURL,
		GlobalAccessURL: cfg.MainAppURL,
		SecureCookies:   strings.HasPrefix(cfg.AppURL, "https://"),
		Shopify:         shopifyService,
		StoreLink:       application.NewStoreLinkService(relay, cfg.ScopeString(), logger),
		Orders:          application.NewCustomerOrderService(shopifyClient, relay, logger),
		Dispatcher:      webhook_handlers.NewDispatcher(relay, store, logger),
		Verifier:        verifier,
		Tokens:          tokens,
		Shops:           shops,
		Metrics:         m,
		Gatherer:        prometheus.DefaultGatherer,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().
		Str("port", cfg.Port).
		Str("appURL", cfg.AppURL).
		Str("sessionStore", string(store.Backend)).
		Msg("Starting API server")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.Port + "/swagger/index.html")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(server)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
		logger.Info().Msg("Shutting down")
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe: %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
