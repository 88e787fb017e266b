package shopifyfakes

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"gooscale-shopify-relay/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

var _ ports.ShopifyClient = (*FakeShopifyClient)(nil)

// FakeShopifyClient keeps customers and webhooks in memory. Set the Err
// fields to make the matching call fail.
type FakeShopifyClient struct {
	Shop              *goshopify.Shop
	GetShopErr        error
	CreateCustomerErr error
	CreateWebhookErr  error
	ListWebhooksErr   error

	Customers []goshopify.Customer
	Webhooks  map[string][]goshopify.Webhook

	nextID uint64
	lock   sync.Mutex
}

func NewFakeShopifyClient() *FakeShopifyClient {
	return &FakeShopifyClient{
		Webhooks: make(map[string][]goshopify.Webhook),
		nextID:   1000,
	}
}

func (f *FakeShopifyClient) GetShop(_ context.Context, shop string, _ string) (*goshopify.Shop, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.GetShopErr != nil {
		return nil, f.GetShopErr
	}
	if f.Shop != nil {
		return f.Shop, nil
	}
	return &goshopify.Shop{Name: shop, Domain: shop, MyshopifyDomain: shop}, nil
}

func (f *FakeShopifyClient) CreateCustomer(_ context.Context, _ string, _ string, customer *goshopify.Customer) (*goshopify.Customer, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.CreateCustomerErr != nil {
		return nil, f.CreateCustomerErr
	}
	f.nextID++
	created := *customer
	created.Id = f.nextID
	f.Customers = append(f.Customers, created)
	return &created, nil
}

func (f *FakeShopifyClient) CreateWebhook(_ context.Context, shop string, _ string, topic string, address string) (*goshopify.Webhook, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.CreateWebhookErr != nil {
		return nil, f.CreateWebhookErr
	}
	f.nextID++
	hook := goshopify.Webhook{Id: f.nextID, Topic: topic, Address: address, Format: "json"}
	f.Webhooks[shop] = append(f.Webhooks[shop], hook)
	return &hook, nil
}

func (f *FakeShopifyClient) ListWebhooks(_ context.Context, shop string, _ string) ([]goshopify.Webhook, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.ListWebhooksErr != nil {
		return nil, f.ListWebhooksErr
	}
	return append([]goshopify.Webhook(nil), f.Webhooks[shop]...), nil
}

// WebhookTopics returns the topics registered for shop in creation order
func (f *FakeShopifyClient) WebhookTopics(shop string) []string {
	f.lock.Lock()
	defer f.lock.Unlock()

	var topics []string
	for _, hook := range f.Webhooks[shop] {
		topics = append(topics, hook.Topic)
	}
	return topics
}

var _ ports.OAuthExchanger = (*FakeOAuth)(nil)

// FakeOAuth hands out AccessToken for any code except the empty one
type FakeOAuth struct {
	AccessToken string
	Scopes      []string
	Err         error
	Codes       []string
}

func (f *FakeOAuth) AuthorizeURL(shop string, state string) string {
	q := url.Values{"state": {state}, "client_id": {"test-key"}}
	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shop, q.Encode())
}

func (f *FakeOAuth) ExchangeToken(_ context.Context, _ string, code string) (string, []string, error) {
	f.Codes = append(f.Codes, code)
	if f.Err != nil {
		return "", nil, f.Err
	}
	if code == "" {
		return "", nil, fmt.Errorf("missing authorization code")
	}
	return f.AccessToken, f.Scopes, nil
}
