package gooscale

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/infrastructure/metrics"
	"gooscale-shopify-relay/internal/ports"

	"github.com/rs/zerolog"
)

// ErrNoToken is returned when the login endpoint answers 2xx without a token
var ErrNoToken = errors.New("gooscale login response has no token")

// Operation names, used in errors, logs and metrics
const (
	OpAuthenticate   = "authenticate"
	OpLinkStore      = "link_store"
	OpSyncProducts   = "sync_products"
	OpStoreConfig    = "store_config"
	OpCheckStore     = "check_store"
	OpOrder          = "order"
	OpCustomer       = "customer"
	OpCustomerOrder  = "customer_order"
	maxErrorBodySize = 4 << 10
)

// Client talks to the Gooscale platform. It holds no per-shop state
// and is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

var _ ports.RelayClient = (*Client)(nil)

// NewClient creates a Gooscale client for baseURL. apiKey is the platform
// bearer key used by the server-to-server calls.
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger zerolog.Logger, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "gooscale").Logger(),
		metrics:    m,
	}
}

// Authenticate logs the merchant into Gooscale and returns the bearer token
// that LinkStore needs.
func (c *Client) Authenticate(ctx context.Context, shop string, creds ports.GooscaleCredentials) (*ports.AuthResult, error) {
	body := map[string]string{
		"email":         creds.Email,
		"password":      creds.Password,
		"shopify_store": shop,
	}

	var raw map[string]any
	if err := c.do(ctx, OpAuthenticate, http.MethodPost, "/api/auth/login", nil, "", body, &raw); err != nil {
		return nil, err
	}

	token, _ := raw["token"].(string)
	if token == "" {
		return nil, ErrNoToken
	}
	return &ports.AuthResult{Token: token, Raw: raw}, nil
}

// LinkStore links the Shopify store to the Gooscale account behind token
func (c *Client) LinkStore(ctx context.Context, token string, session *domain.Session, scope string) (map[string]any, error) {
	if session == nil {
		return nil, domain.ErrNoSession
	}

	body := map[string]string{
		"shop_domain":   session.Shop,
		"shopify_token": session.AccessToken,
		"shopify_scope": scope,
	}

	var raw map[string]any
	if err := c.do(ctx, OpLinkStore, http.MethodPost, "/api/shopify/link-store", nil, token, body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SyncProducts asks Gooscale to pull the shop's catalogue
func (c *Client) SyncProducts(ctx context.Context, shop string) (*ports.SyncResult, error) {
	var raw map[string]any
	body := map[string]string{"shop_domain": shop}
	if err := c.do(ctx, OpSyncProducts, http.MethodPost, "/api/shopify/sync-products", nil, c.apiKey, body, &raw); err != nil {
		return nil, err
	}

	result := &ports.SyncResult{Raw: raw}
	switch id := raw["syncId"].(type) {
	case string:
		result.SyncID = id
	case float64:
		result.SyncID = fmt.Sprintf("%.0f", id)
	}
	return result, nil
}

// GetStoreConfig returns the shop's configuration held by Gooscale
func (c *Client) GetStoreConfig(ctx context.Context, shop string) (map[string]any, error) {
	var raw map[string]any
	query := url.Values{"shop": {shop}}
	if err := c.do(ctx, OpStoreConfig, http.MethodGet, "/api/shopify/store-config", query, c.apiKey, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// IsStoreLinked reports whether Gooscale knows the shop. Errors of any kind
// are logged and reported as false.
func (c *Client) IsStoreLinked(ctx context.Context, shop string) bool {
	var raw map[string]any
	query := url.Values{"shop": {shop}}
	if err := c.do(ctx, OpCheckStore, http.MethodGet, "/api/shopify/check-store", query, "", nil, &raw); err != nil {
		c.logger.Warn().Err(err).Str("shop", shop).Msg("Error checking if store is linked")
		return false
	}
	linked, _ := raw["linked"].(bool)
	return linked
}

// ForwardOrder relays an order webhook payload. Creates are POSTed, updates PUT.
func (c *Client) ForwardOrder(ctx context.Context, shop string, order json.RawMessage, eventType domain.OrderEventType) error {
	method := http.MethodPost
	if eventType == domain.OrderEventUpdate {
		method = http.MethodPut
	}
	body := struct {
		Shop      string                `json:"shop"`
		Order     json.RawMessage       `json:"order"`
		EventType domain.OrderEventType `json:"eventType"`
	}{shop, rawOrNull(order), eventType}

	return c.do(ctx, OpOrder, method, "/api/order", nil, c.apiKey, body, nil)
}

// ForwardCustomer relays a customers/create webhook payload
func (c *Client) ForwardCustomer(ctx context.Context, shop string, customer json.RawMessage) error {
	body := struct {
		Shop      string          `json:"shop"`
		Customer  json.RawMessage `json:"customer"`
		EventType string          `json:"eventType"`
	}{shop, rawOrNull(customer), "create"}

	return c.do(ctx, OpCustomer, http.MethodPost, "/api/customer", nil, c.apiKey, body, nil)
}

// ForwardCustomerOrder relays a submitted customer form with the id Shopify assigned
func (c *Client) ForwardCustomerOrder(ctx context.Context, shopifyCustomerID uint64, submission *domain.CustomerOrderSubmission) error {
	body := struct {
		ShopifyCustomerID uint64 `json:"shopifyCustomerId"`
		*domain.CustomerOrderSubmission
	}{shopifyCustomerID, submission}

	return c.do(ctx, OpCustomerOrder, http.MethodPost, "/api/customer-order", nil, c.apiKey, body, nil)
}

// do issues one request. out is decoded from a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, bearer string, body any, out any) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveRelay(op, outcome(err), started)
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gooscale %s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("gooscale %s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		c.logger.Error().
			Str("op", op).
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Gooscale request failed")
		return &domain.RelayError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &domain.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	c.logger.Debug().Str("op", op).Int("status", resp.StatusCode).Msg("Gooscale request completed")
	return nil
}

func outcome(err error) string {
	var relayErr *domain.RelayError
	var netErr *domain.NetworkError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &relayErr):
		return "relay_error"
	case errors.As(err, &netErr):
		return "network_error"
	default:
		return "error"
	}
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
