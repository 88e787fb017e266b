package api

import (
	"encoding/json"
	"net/http"
	"time"

	"gooscale-shopify-relay/internal/application"
	"gooscale-shopify-relay/internal/application/webhook_handlers"
	"gooscale-shopify-relay/internal/infrastructure/metrics"
	securitymiddleware "gooscale-shopify-relay/internal/infrastructure/middleware"
	"gooscale-shopify-relay/internal/infrastructure/shopify"
	"gooscale-shopify-relay/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SessionCookieTTL is how long an admin session cookie stays valid
const SessionCookieTTL = 12 * time.Hour

// FormTokenTTL bounds how long a rendered admin form can still be submitted
const FormTokenTTL = time.Hour

// WebhookVerifier checks the signature of an inbound webhook and returns its body
type WebhookVerifier interface {
	VerifyWebhook(w http.ResponseWriter, r *http.Request) ([]byte, error)
	ports.QueryVerifier
}

// Deps are the services the HTTP surface is built from
type Deps struct {
	APIKey          string
	// MainAppURL is the Gooscale dashboard the admin pages link to
	MainAppURL      string
	// GlobalAccessURL is the raw MAIN_APP_URL; /global-access refuses to
	// redirect while it is empty
	GlobalAccessURL string
	// SecureCookies is false only for plain-http local development
	SecureCookies   bool

	Shopify    *application.ShopifyService
	StoreLink  *application.StoreLinkService
	Orders     *application.CustomerOrderService
	Dispatcher *webhook_handlers.Dispatcher

	Verifier WebhookVerifier
	Tokens   *shopify.SessionTokenVerifier
	Shops    ports.ShopDomainValidator

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

// NewRouter builds the chi router for the app
func NewRouter(d Deps) (http.Handler, error) {
	pages, err := newRenderer(d.Logger)
	if err != nil {
		return nil, err
	}
	cookies := securitymiddleware.NewCookieIssuer(d.Tokens, SessionCookieTTL, d.SecureCookies)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware(d.Shops))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*.myshopify.com", "https://admin.shopify.com"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	r.Get("/global-access", globalAccessHandler(d.GlobalAccessURL))

	// OAuth install and login
	r.Get("/auth", beginAuthHandler(d.Shopify, pages, d.Logger))
	r.Get("/auth/callback", authCallbackHandler(d.Shopify, cookies, d.Logger))
	r.Get("/auth/login", loginHandler(d.Shopify, pages))
	r.Post("/auth/login", loginHandler(d.Shopify, pages))

	// Webhooks
	r.Post("/webhooks", webhookHandler(d.Verifier, d.Dispatcher, d.Metrics, d.Logger))
	r.Post("/webhooks/customers/data_request", complianceHandler("customers/data_request", d.Verifier, d.Dispatcher, d.Metrics, d.Logger))
	r.Post("/webhooks/customers/redact", complianceHandler("customers/redact", d.Verifier, d.Dispatcher, d.Metrics, d.Logger))
	r.Post("/webhooks/shop/redact", complianceHandler("shop/redact", d.Verifier, d.Dispatcher, d.Metrics, d.Logger))

	// Embedded admin
	app := &appPages{
		apiKey:     d.APIKey,
		mainAppURL: d.MainAppURL,
		shopify:    d.Shopify,
		storeLink:  d.StoreLink,
		orders:     d.Orders,
		tokens:     d.Tokens,
		metrics:    d.Metrics,
		pages:      pages,
		logger:     d.Logger,
	}
	r.Group(func(r chi.Router) {
		r.Use(securitymiddleware.SessionAuthMiddleware(d.Tokens, d.Verifier, d.Shops, d.Shopify, cookies, d.Logger))

		r.Get("/app", app.home)
		r.Get("/app/connect", app.connect)
		r.Post("/app/connect", app.submitConnect)
		r.Get("/app/sync", app.sync)
		r.Post("/app/sync", app.startSync)
		r.Get("/app/webhooks", app.webhooks)
		r.Post("/app/webhooks", app.setupWebhooks)
		r.Get("/app/customer-order", app.customerOrder)
		r.Post("/app/customer-order", app.submitCustomerOrder)
	})

	return r, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func globalAccessHandler(mainAppURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mainAppURL == "" {
			http.Error(w, "Please set MAIN_APP_URL in your environment variables.", http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, mainAppURL, http.StatusFound)
	}
}
