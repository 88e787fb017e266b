package middleware

import (
	"net/http"
	"time"

	"gooscale-shopify-relay/internal/infrastructure/shopify"
)

// CookieIssuer writes the session cookie. A nil issuer writes nothing.
type CookieIssuer struct {
	tokens *shopify.SessionTokenVerifier
	ttl    time.Duration
	secure bool
}

func NewCookieIssuer(tokens *shopify.SessionTokenVerifier, ttl time.Duration, secure bool) *CookieIssuer {
	return &CookieIssuer{tokens: tokens, ttl: ttl, secure: secure}
}

// Issue sets a cookie holding a session token for shop. The cookie has to
// survive inside the admin iframe, so it is SameSite=None when secure.
func (c *CookieIssuer) Issue(w http.ResponseWriter, shop string) {
	if c == nil {
		return
	}
	token, err := c.tokens.Sign(shop, c.ttl)
	if err != nil {
		return
	}
	sameSite := http.SameSiteLaxMode
	if c.secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: sameSite,
	})
}
