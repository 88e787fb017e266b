package shopify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"gooscale-shopify-relay/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// MaxWebhookBodySize caps the webhook payload read into memory
const MaxWebhookBodySize = 5 << 20

// Verifier checks Shopify signatures with the app secret
type Verifier struct {
	app goshopify.App
}

// NewVerifier creates a verifier for the app's API secret
func NewVerifier(apiKey, apiSecret string) *Verifier {
	return &Verifier{app: goshopify.App{ApiKey: apiKey, ApiSecret: apiSecret}}
}

// VerifyWebhook checks X-Shopify-Hmac-SHA256 against the request body and
// returns the body. Bodies over MaxWebhookBodySize yield
// domain.ErrWebhookTooLarge before any signature check.
func (v *Verifier) VerifyWebhook(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.ContentLength > MaxWebhookBodySize {
		return nil, domain.ErrWebhookTooLarge
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBodySize))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, domain.ErrWebhookTooLarge
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook payload: %w", err)
	}

	r.Body = io.NopCloser(bytes.NewReader(payload))
	if !v.app.VerifyWebhookRequest(r) {
		return nil, domain.ErrInvalidHMAC
	}
	return payload, nil
}

// VerifyQuery checks the hmac parameter Shopify adds to admin and OAuth redirects
func (v *Verifier) VerifyQuery(u *url.URL) error {
	if u.Query().Get("hmac") == "" {
		return domain.ErrInvalidHMAC
	}
	ok, err := v.app.VerifyAuthorizationURL(u)
	if err != nil {
		return fmt.Errorf("failed to verify query signature: %w", err)
	}
	if !ok {
		return domain.ErrInvalidHMAC
	}
	return nil
}
