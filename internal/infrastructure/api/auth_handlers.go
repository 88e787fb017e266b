package api

import (
	"errors"
	"net/http"
	"net/url"

	"gooscale-shopify-relay/internal/application"
	"gooscale-shopify-relay/internal/domain"
	securitymiddleware "gooscale-shopify-relay/internal/infrastructure/middleware"

	"github.com/rs/zerolog"
)

const (
	msgMissingShop = "Please enter your shop domain to log in"
	msgInvalidShop = "Please enter a valid shop domain to log in"
)

// loginError maps a shop validation error to the message shown on the login page
func loginError(err error) string {
	if errors.Is(err, domain.ErrMissingShopDomain) {
		return msgMissingShop
	}
	return msgInvalidShop
}

func loginPage(shop string, message string) *pageData {
	return &pageData{Title: "Log in", LoginShop: shop, Error: message}
}

// beginAuthHandler starts the OAuth install for the shop parameter
func beginAuthHandler(service *application.ShopifyService, pages *renderer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")

		authURL, err := service.BeginAuth(r.Context(), shop)
		switch {
		case errors.Is(err, domain.ErrMissingShopDomain), errors.Is(err, domain.ErrInvalidShopDomain):
			pages.render(w, http.StatusBadRequest, "login", loginPage(shop, loginError(err)))
			return
		case err != nil:
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to start OAuth")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// authCallbackHandler finishes the install and sends the merchant to the admin home
func authCallbackHandler(service *application.ShopifyService, cookies *securitymiddleware.CookieIssuer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := service.CompleteAuth(r.Context(), r.URL)
		switch {
		case errors.Is(err, domain.ErrInvalidHMAC):
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		case errors.Is(err, domain.ErrInvalidState),
			errors.Is(err, domain.ErrInvalidShopDomain),
			errors.Is(err, domain.ErrMissingShopDomain):
			http.Error(w, "Invalid OAuth callback", http.StatusBadRequest)
			return
		case err != nil:
			logger.Error().Err(err).Msg("OAuth callback failed")
			http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			return
		}

		cookies.Issue(w, session.Shop)
		http.Redirect(w, r, "/app?shop="+url.QueryEscape(session.Shop), http.StatusFound)
	}
}

// loginHandler serves the shop domain form. A valid domain goes on to the
// install flow.
func loginHandler(service *application.ShopifyService, pages *renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if r.Method == http.MethodPost {
			shop = r.FormValue("shop")
		} else if shop == "" {
			pages.render(w, http.StatusOK, "login", loginPage("", ""))
			return
		}

		normalized, err := service.NormalizeShop(shop)
		if err != nil {
			pages.render(w, http.StatusBadRequest, "login", loginPage(shop, loginError(err)))
			return
		}
		http.Redirect(w, r, "/auth?shop="+url.QueryEscape(normalized), http.StatusFound)
	}
}
