package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/infrastructure/shopify"
	"gooscale-shopify-relay/internal/ports"

	"github.com/rs/zerolog"
)

// SessionCookie carries a session token issued after install, so the
// redirect back from the OAuth callback is authenticated
const SessionCookie = "gooscale_session"

// TokenVerifier validates App Bridge session tokens and returns the shop
type TokenVerifier interface {
	Verify(token string) (string, *shopify.SessionTokenClaims, error)
}

// SessionLoader returns the stored session for a shop or domain.ErrNoSession
type SessionLoader interface {
	LoadSession(ctx context.Context, shop string) (*domain.Session, error)
}

// SessionAuthMiddleware resolves the shop behind an admin request and puts its
// stored session in the context.
//
// The shop is taken, in order, from a session token (Authorization bearer or
// id_token parameter), a signed admin query, or the session cookie.
// Without a stored session the request goes to the install flow; without
// any identity it goes to the login page. The cookie is sent on cross-site
// requests, so it only authenticates GET and HEAD; a form post has to carry
// an id_token as well.
func SessionAuthMiddleware(
	tokens TokenVerifier,
	query ports.QueryVerifier,
	shops ports.ShopDomainValidator,
	sessions SessionLoader,
	cookies *CookieIssuer,
	logger zerolog.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			shop, fromCookie, err := resolveShop(r, tokens, query, shops)
			switch {
			case errors.Is(err, errNoIdentity):
				http.Redirect(w, r, "/auth/login", http.StatusFound)
				return
			case err != nil:
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected admin request")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if fromCookie && !safeMethod(r.Method) {
				logger.Warn().
					Str("shop", shop).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("origin", r.Header.Get("Origin")).
					Msg("Rejected cookie-only admin request")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			session, err := sessions.LoadSession(ctx, shop)
			if errors.Is(err, domain.ErrNoSession) {
				http.Redirect(w, r, "/auth?shop="+url.QueryEscape(shop), http.StatusFound)
				return
			}
			if err != nil {
				logger.Error().Err(err).Str("shop", shop).Msg("Failed to load session")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if !fromCookie {
				cookies.Issue(w, shop)
			}
			next.ServeHTTP(w, r.WithContext(domain.WithSession(ctx, session)))
		})
	}
}

var errNoIdentity = errors.New("request carries no shop identity")

func resolveShop(r *http.Request, tokens TokenVerifier, query ports.QueryVerifier, shops ports.ShopDomainValidator) (shop string, fromCookie bool, err error) {
	if token := sessionToken(r); token != "" {
		shop, _, err := tokens.Verify(token)
		return shop, false, err
	}

	q := r.URL.Query()
	if q.Get("hmac") != "" {
		if err := query.VerifyQuery(r.URL); err != nil {
			return "", false, err
		}
		shop, err := shops.Normalize(q.Get("shop"))
		if err != nil {
			return "", false, errNoIdentity
		}
		return shop, false, nil
	}

	// An expired cookie is not an error, the merchant just logs in again
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if shop, _, err := tokens.Verify(cookie.Value); err == nil {
			return shop, true, nil
		}
	}

	return "", false, errNoIdentity
}

func safeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if token := r.URL.Query().Get("id_token"); token != "" {
		return token
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return r.FormValue("id_token")
	}
	return ""
}
