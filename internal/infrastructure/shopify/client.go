package shopify

import (
	"context"
	"fmt"
	"net/http"

	"gooscale-shopify-relay/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type client struct {
	app        goshopify.App
	apiVersion string
	httpClient *http.Client
	logger     zerolog.Logger
}

// DefaultAPIVersion is the Admin API version the relay is written against
const DefaultAPIVersion = "2024-10"

// NewClient creates a Shopify Admin API adapter
func NewClient(apiKey, apiSecret string, httpClient *http.Client, logger zerolog.Logger) ports.ShopifyClient {
	return &client{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		apiVersion: DefaultAPIVersion,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "shopify").Logger(),
	}
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	opts := []goshopify.Option{goshopify.WithVersion(c.apiVersion)}
	if c.httpClient != nil {
		opts = append(opts, goshopify.WithHTTPClient(c.httpClient))
	}
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Shop API

func (c *client) GetShop(ctx context.Context, shopDomain string, accessToken string) (*goshopify.Shop, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	shop, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

// Customer API

func (c *client) CreateCustomer(ctx context.Context, shopDomain string, accessToken string, customer *goshopify.Customer) (*goshopify.Customer, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	created, err := client.Customer.Create(ctx, *customer)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	c.logger.Info().Str("shop", shopDomain).Uint64("customerId", created.Id).Msg("Created Shopify customer")
	return created, nil
}

// Webhook API

func (c *client) CreateWebhook(ctx context.Context, shopDomain string, accessToken string, topic string, address string) (*goshopify.Webhook, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	webhook := goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	}
	created, err := client.Webhook.Create(ctx, webhook)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook %s: %w", topic, err)
	}
	return created, nil
}

func (c *client) ListWebhooks(ctx context.Context, shopDomain string, accessToken string) ([]goshopify.Webhook, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	webhooks, err := client.Webhook.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	return webhooks, nil
}
