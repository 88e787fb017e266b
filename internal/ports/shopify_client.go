package ports

import (
	"context"
	"net/url"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the Shopify Admin API operations the relay needs
type ShopifyClient interface {
	// Shop API
	GetShop(ctx context.Context, shop string, accessToken string) (*shopify.Shop, error)

	// Customer API
	CreateCustomer(ctx context.Context, shop string, accessToken string, customer *shopify.Customer) (*shopify.Customer, error)

	// Webhook API
	CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) (*shopify.Webhook, error)
	ListWebhooks(ctx context.Context, shop string, accessToken string) ([]shopify.Webhook, error)
}

// OAuthExchanger turns an authorization code into an offline access token
type OAuthExchanger interface {
	AuthorizeURL(shop string, state string) string
	ExchangeToken(ctx context.Context, shop string, code string) (accessToken string, scopes []string, err error)
}

// ShopDomainValidator normalizes a shop parameter and rejects foreign hosts
type ShopDomainValidator interface {
	Normalize(shop string) (string, error)
}

// QueryVerifier checks the hmac Shopify adds to redirect query strings
type QueryVerifier interface {
	VerifyQuery(u *url.URL) error
}

// TokenValidator checks a stored offline token against Shopify. valid is
// false only when Shopify rejected the token.
type TokenValidator interface {
	ValidateToken(ctx context.Context, shop string, accessToken string) (info *shopify.Shop, valid bool, err error)
}
