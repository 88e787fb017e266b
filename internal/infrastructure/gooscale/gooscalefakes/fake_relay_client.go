package gooscalefakes

import (
	"context"
	"encoding/json"
	"sync"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"
)

var _ ports.RelayClient = (*FakeRelayClient)(nil)

// ForwardedOrder is one ForwardOrder call
type ForwardedOrder struct {
	Shop      string
	Order     json.RawMessage
	EventType domain.OrderEventType
}

// ForwardedCustomerOrder is one ForwardCustomerOrder call
type ForwardedCustomerOrder struct {
	ShopifyCustomerID uint64
	Submission        domain.CustomerOrderSubmission
}

// FakeRelayClient records every call. Set the Err fields to fail a call.
type FakeRelayClient struct {
	Token       string
	Linked      bool
	SyncID      string
	StoreConfig map[string]any

	AuthErr          error
	LinkErr          error
	SyncErr          error
	StoreConfigErr   error
	ForwardErr       error
	CustomerOrderErr error

	Logins          []ports.GooscaleCredentials
	LinkedSessions  []domain.Session
	LinkTokens      []string
	LinkScopes      []string
	Syncs           []string
	Orders          []ForwardedOrder
	Customers       []json.RawMessage
	CustomerOrders  []ForwardedCustomerOrder
	LinkStatusCalls int

	lock sync.Mutex
}

func NewFakeRelayClient() *FakeRelayClient {
	return &FakeRelayClient{Token: "gooscale-token"}
}

func (f *FakeRelayClient) Authenticate(_ context.Context, _ string, creds ports.GooscaleCredentials) (*ports.AuthResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.Logins = append(f.Logins, creds)
	if f.AuthErr != nil {
		return nil, f.AuthErr
	}
	return &ports.AuthResult{Token: f.Token, Raw: map[string]any{"token": f.Token}}, nil
}

func (f *FakeRelayClient) LinkStore(_ context.Context, token string, session *domain.Session, scope string) (map[string]any, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if session == nil {
		return nil, domain.ErrNoSession
	}
	f.LinkTokens = append(f.LinkTokens, token)
	f.LinkedSessions = append(f.LinkedSessions, *session)
	f.LinkScopes = append(f.LinkScopes, scope)
	if f.LinkErr != nil {
		return nil, f.LinkErr
	}
	f.Linked = true
	return map[string]any{"success": true}, nil
}

func (f *FakeRelayClient) SyncProducts(_ context.Context, shop string) (*ports.SyncResult, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.Syncs = append(f.Syncs, shop)
	if f.SyncErr != nil {
		return nil, f.SyncErr
	}
	return &ports.SyncResult{SyncID: f.SyncID}, nil
}

func (f *FakeRelayClient) GetStoreConfig(_ context.Context, _ string) (map[string]any, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.StoreConfigErr != nil {
		return nil, f.StoreConfigErr
	}
	return f.StoreConfig, nil
}

func (f *FakeRelayClient) IsStoreLinked(_ context.Context, _ string) bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.LinkStatusCalls++
	return f.Linked
}

func (f *FakeRelayClient) ForwardOrder(_ context.Context, shop string, order json.RawMessage, eventType domain.OrderEventType) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.Orders = append(f.Orders, ForwardedOrder{Shop: shop, Order: order, EventType: eventType})
	return f.ForwardErr
}

func (f *FakeRelayClient) ForwardCustomer(_ context.Context, _ string, customer json.RawMessage) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.Customers = append(f.Customers, customer)
	return f.ForwardErr
}

func (f *FakeRelayClient) ForwardCustomerOrder(_ context.Context, shopifyCustomerID uint64, submission *domain.CustomerOrderSubmission) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.CustomerOrders = append(f.CustomerOrders, ForwardedCustomerOrder{ShopifyCustomerID: shopifyCustomerID, Submission: *submission})
	return f.CustomerOrderErr
}

// Calls returns how many forwarding calls were made
func (f *FakeRelayClient) Calls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.Orders) + len(f.Customers) + len(f.CustomerOrders)
}
