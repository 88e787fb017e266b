package middleware

import (
	"net/http"
	"strings"

	"gooscale-shopify-relay/internal/ports"
)

const shopifyAdminOrigin = "https://admin.shopify.com"

// SecurityHeadersMiddleware sets the response headers for pages embedded in
// the Shopify admin. frame-ancestors names the requesting shop when the shop
// parameter is a valid shop domain.
func SecurityHeadersMiddleware(shops ports.ShopDomainValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ancestors := []string{shopifyAdminOrigin}
			if shop, err := shops.Normalize(r.URL.Query().Get("shop")); err == nil {
				ancestors = append([]string{"https://" + shop}, ancestors...)
			}

			h := w.Header()
			h.Set("Content-Security-Policy", "frame-ancestors "+strings.Join(ancestors, " ")+";")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}
