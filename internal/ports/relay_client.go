package ports

import (
	"context"
	"encoding/json"

	"gooscale-shopify-relay/internal/domain"
)

// GooscaleCredentials are the merchant's Gooscale login
type GooscaleCredentials struct {
	Email    string
	Password string
}

// AuthResult is the answer of the Gooscale login endpoint
type AuthResult struct {
	Token string         `json:"token"`
	Raw   map[string]any `json:"-"`
}

// SyncResult is the answer of the product sync endpoint
type SyncResult struct {
	SyncID string         `json:"syncId"`
	Raw    map[string]any `json:"-"`
}

// RelayClient defines the calls the app makes to the Gooscale platform.
// Non-2xx answers fail with *domain.RelayError, transport failures with
// *domain.NetworkError.
type RelayClient interface {
	Authenticate(ctx context.Context, shop string, creds GooscaleCredentials) (*AuthResult, error)
	LinkStore(ctx context.Context, token string, session *domain.Session, scope string) (map[string]any, error)
	SyncProducts(ctx context.Context, shop string) (*SyncResult, error)
	GetStoreConfig(ctx context.Context, shop string) (map[string]any, error)

	// IsStoreLinked never fails; any error is reported as not linked
	IsStoreLinked(ctx context.Context, shop string) bool

	ForwardOrder(ctx context.Context, shop string, order json.RawMessage, eventType domain.OrderEventType) error
	ForwardCustomer(ctx context.Context, shop string, customer json.RawMessage) error
	ForwardCustomerOrder(ctx context.Context, shopifyCustomerID uint64, submission *domain.CustomerOrderSubmission) error
}
