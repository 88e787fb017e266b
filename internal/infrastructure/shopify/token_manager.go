package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gooscale-shopify-relay/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// TokenManager checks whether stored offline tokens are still accepted by Shopify.
// Offline tokens don't expire but are revoked on uninstall.
type TokenManager struct {
	client ports.ShopifyClient
	logger zerolog.Logger
}

func NewTokenManager(client ports.ShopifyClient, logger zerolog.Logger) *TokenManager {
	return &TokenManager{
		client: client,
		logger: logger,
	}
}

// ValidateToken makes a lightweight shop call and returns the shop on success.
// It reports valid=false only when Shopify rejects the token; other errors
// are returned with valid=true.
func (tm *TokenManager) ValidateToken(ctx context.Context, shopDomain string, token string) (*goshopify.Shop, bool, error) {
	if token == "" {
		return nil, false, fmt.Errorf("token is empty")
	}

	shop, err := tm.client.GetShop(ctx, shopDomain, token)
	if err != nil {
		if IsRevokedToken(err) {
			tm.logger.Warn().
				Str("shop", shopDomain).
				Msg("Token validation failed: token is invalid or revoked")
			return nil, false, nil
		}
		return nil, true, err
	}

	tm.logger.Debug().Str("shop", shopDomain).Msg("Token validation successful")
	return shop, true, nil
}

// IsRevokedToken reports whether err is Shopify refusing the access token
func IsRevokedToken(err error) bool {
	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		return respErr.Status == http.StatusUnauthorized || respErr.Status == http.StatusForbidden
	}
	var respErrPtr *goshopify.ResponseError
	if errors.As(err, &respErrPtr) {
		return respErrPtr.Status == http.StatusUnauthorized || respErrPtr.Status == http.StatusForbidden
	}
	return false
}
