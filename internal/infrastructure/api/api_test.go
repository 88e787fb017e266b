package api_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"gooscale-shopify-relay/internal/application"
	"gooscale-shopify-relay/internal/application/webhook_handlers"
	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/infrastructure/api"
	"gooscale-shopify-relay/internal/infrastructure/gooscale/gooscalefakes"
	"gooscale-shopify-relay/internal/infrastructure/metrics"
	securitymiddleware "gooscale-shopify-relay/internal/infrastructure/middleware"
	"gooscale-shopify-relay/internal/infrastructure/repository/repofakes"
	"gooscale-shopify-relay/internal/infrastructure/shopify"
	"gooscale-shopify-relay/internal/infrastructure/shopify/shopifyfakes"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey     = "test-key"
	testSecret  = "test-secret"
	testShop    = "demo.myshopify.com"
	mainAppURL  = "https://gooscale.example.com"
	hookAddress = "https://app.example.com/webhooks"
)

type fixture struct {
	router   http.Handler
	sessions *repofakes.FakeSessionRepo
	oauth    *shopifyfakes.FakeOAuth
	shopify  *shopifyfakes.FakeShopifyClient
	relay    *gooscalefakes.FakeRelayClient
	tokens   *shopify.SessionTokenVerifier
}

func newFixture(t *testing.T, opts ...func(*api.Deps)) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &fixture{
		sessions: repofakes.NewFakeSessionRepo(&domain.Session{Shop: testShop, AccessToken: "shpat_1"}),
		oauth:    &shopifyfakes.FakeOAuth{AccessToken: "shpat_new", Scopes: []string{"read_orders"}},
		shopify:  shopifyfakes.NewFakeShopifyClient(),
		relay:    gooscalefakes.NewFakeRelayClient(),
	}

	verifier := shopify.NewVerifier(testKey, testSecret)
	validator := shopify.NewShopValidator("")
	f.tokens = shopify.NewSessionTokenVerifier(testKey, testSecret, validator)
	webhooks := application.NewWebhookManager(f.shopify, hookAddress, logger)

	reg := prometheus.NewRegistry()
	deps := api.Deps{
		APIKey:          testKey,
		MainAppURL:      mainAppURL,
		GlobalAccessURL: mainAppURL,
		SecureCookies:   true,
		Shopify: application.NewShopifyService(
			f.sessions,
			repofakes.NewFakeStateStore(),
			f.oauth,
			verifier,
			validator,
			shopify.NewTokenManager(f.shopify, logger),
			webhooks,
			logger,
		),
		StoreLink:  application.NewStoreLinkService(f.relay, "read_orders,write_orders", logger),
		Orders:     application.NewCustomerOrderService(f.shopify, f.relay, logger),
		Dispatcher: webhook_handlers.NewDispatcher(f.relay, f.sessions, logger),
		Verifier:   verifier,
		Tokens:     f.tokens,
		Shops:      validator,
		Metrics:    metrics.New(reg),
		Gatherer:   reg,
		Logger:     logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	router, err := api.NewRouter(deps)
	require.NoError(t, err)
	f.router = router
	return f
}

func (f *fixture) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

// admin returns a request authenticated with an App Bridge session token
func (f *fixture) admin(t *testing.T, method, target string, body io.Reader) *http.Request {
	t.Helper()
	token, err := f.tokens.Sign(testShop, time.Minute)
	require.NoError(t, err)
	r := httptest.NewRequest(method, target, body)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func (f *fixture) adminForm(t *testing.T, target string, form url.Values) *http.Request {
	t.Helper()
	r := f.admin(t, http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// withCookie returns a request that carries only the session cookie
func (f *fixture) withCookie(t *testing.T, method, target string, body io.Reader) *http.Request {
	t.Helper()
	token, err := f.tokens.Sign(testShop, time.Hour)
	require.NoError(t, err)
	r := httptest.NewRequest(method, target, body)
	r.AddCookie(&http.Cookie{Name: securitymiddleware.SessionCookie, Value: token})
	return r
}

var idTokenField = regexp.MustCompile(`name="id_token" value="([^"]+)"`)

func webhookRequest(target, topic, body string, signed bool) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Shopify-Topic", topic)
	r.Header.Set("X-Shopify-Shop-Domain", testShop)
	r.Header.Set("X-Shopify-Webhook-Id", "wh-1")
	if signed {
		mac := hmac.New(sha256.New, []byte(testSecret))
		mac.Write([]byte(body))
		r.Header.Set("X-Shopify-Hmac-Sha256", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	} else {
		r.Header.Set("X-Shopify-Hmac-Sha256", "bm90LWEtc2lnbmF0dXJl")
	}
	return r
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWebhook_InvalidSignature(t *testing.T) {
	f := newFixture(t)

	w := f.do(webhookRequest("/webhooks", "orders/create", `{"id":1}`, false))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid webhook signature"}`, w.Body.String())
	assert.Zero(t, f.relay.Calls())
}

func TestWebhook_PayloadTooLarge(t *testing.T) {
	f := newFixture(t)
	body := `{"note":"` + strings.Repeat("a", shopify.MaxWebhookBodySize) + `"}`

	w := f.do(webhookRequest("/webhooks", "orders/create", body, true))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"Webhook payload too large"}`, w.Body.String())

	w = f.do(webhookRequest("/webhooks/shop/redact", "shop/redact", body, true))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, f.relay.Calls())
}

func TestWebhook_OrderCreateWithDownstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.relay.ForwardErr = &domain.RelayError{Op: "order", StatusCode: http.StatusInternalServerError, Body: "boom"}

	w := f.do(webhookRequest("/webhooks", "orders/create", `{"id":1001}`, true))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Order webhook processed"}`, w.Body.String())
	require.Len(t, f.relay.Orders, 1)
	assert.Equal(t, testShop, f.relay.Orders[0].Shop)
}

func TestWebhook_Topics(t *testing.T) {
	tests := []struct {
		topic   string
		message string
	}{
		{"orders/create", "Order webhook processed"},
		{"orders/updated", "Order update webhook processed"},
		{"customers/create", "Customer webhook processed"},
		{"products/update", "Webhook received but not handled"},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			f := newFixture(t)

			w := f.do(webhookRequest("/webhooks", tt.topic, `{"id":7}`, true))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.message, decodeJSON(t, w)["message"])
		})
	}
}

func TestWebhook_MalformedBodyIsAcknowledged(t *testing.T) {
	f := newFixture(t)

	w := f.do(webhookRequest("/webhooks", "orders/create", `{oops`, true))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, f.relay.Calls())
}

func TestWebhook_MissingHeaders(t *testing.T) {
	f := newFixture(t)

	r := webhookRequest("/webhooks", "orders/create", `{"id":1}`, true)
	r.Header.Del("X-Shopify-Shop-Domain")
	w := f.do(r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.relay.Calls())
}

func TestWebhook_AppUninstalledDeletesSession(t *testing.T) {
	f := newFixture(t)

	w := f.do(webhookRequest("/webhooks", "app/uninstalled", `{"myshopify_domain":"demo.myshopify.com"}`, true))

	assert.Equal(t, http.StatusOK, w.Code)
	stored, err := f.sessions.LoadSession(t.Context(), testShop)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestComplianceWebhooks(t *testing.T) {
	f := newFixture(t)

	w := f.do(webhookRequest("/webhooks/customers/data_request", "customers/data_request", `{"customer":{"id":5}}`, false))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(webhookRequest("/webhooks/customers/redact", "customers/redact", `{"customer":{"id":5},"orders_to_redact":[1]}`, true))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = f.do(webhookRequest("/webhooks/shop/redact", "shop/redact", `{"shop_domain":"demo.myshopify.com"}`, true))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	stored, _ := f.sessions.LoadSession(t.Context(), testShop)
	assert.Nil(t, stored)
}

func TestComplianceWebhook_StoreFailureStillAcknowledged(t *testing.T) {
	f := newFixture(t)
	f.sessions.Err = errors.New("db down")

	w := f.do(webhookRequest("/webhooks/shop/redact", "shop/redact", `{"shop_domain":"demo.myshopify.com"}`, true))

	assert.Equal(t, http.StatusOK, w.Code)
}

var fullSubmission = map[string]string{
	"firstName": "Ada",
	"lastName":  "Lovelace",
	"email":     "ada@example.com",
	"phone":     "+34600000000",
	"address1":  "Calle Mayor 1",
	"city":      "Madrid",
	"province":  "Madrid",
	"country":   "Spain",
	"zip":       "28013",
}

func submissionWithout(blank ...string) map[string]string {
	out := make(map[string]string, len(fullSubmission))
	for k, v := range fullSubmission {
		out[k] = v
	}
	for _, k := range blank {
		out[k] = "  "
	}
	return out
}

func (f *fixture) postCustomerOrder(t *testing.T, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	r := f.admin(t, http.MethodPost, "/app/customer-order", strings.NewReader(string(raw)))
	r.Header.Set("Content-Type", "application/json")
	return f.do(r)
}

func TestCustomerOrder_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		blank []string
	}{
		{"one", []string{"email"}},
		{"two out of order", []string{"zip", "firstName"}},
		{"address block", []string{"city", "address1", "country"}},
		{"all", domain.RequiredCustomerFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			w := f.postCustomerOrder(t, submissionWithout(tt.blank...))

			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeJSON(t, w)
			assert.Equal(t, false, body["success"])

			var expected []any
			for _, name := range domain.RequiredCustomerFields {
				for _, b := range tt.blank {
					if b == name {
						expected = append(expected, name)
					}
				}
			}
			assert.Equal(t, expected, body["missingFields"])
			assert.True(t, strings.HasPrefix(body["error"].(string), "Missing required fields: "))
			assert.Empty(t, f.shopify.Customers)
		})
	}
}

func TestCustomerOrder_Success(t *testing.T) {
	f := newFixture(t)

	w := f.postCustomerOrder(t, fullSubmission)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1001), body["customerId"])
	require.Len(t, f.relay.CustomerOrders, 1)
	assert.Equal(t, uint64(1001), f.relay.CustomerOrders[0].ShopifyCustomerID)
}

func TestCustomerOrder_FormPost(t *testing.T) {
	f := newFixture(t)
	form := url.Values{}
	for k, v := range fullSubmission {
		form.Set(k, v)
	}

	w := f.do(f.adminForm(t, "/app/customer-order", form))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeJSON(t, w)["success"])
}

func TestCustomerOrder_ForwardFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.relay.CustomerOrderErr = &domain.NetworkError{Op: "customer-order", Err: errors.New("connection refused")}

	w := f.postCustomerOrder(t, fullSubmission)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeJSON(t, w)["success"])
}

func TestCustomerOrder_ShopifyFailure(t *testing.T) {
	f := newFixture(t)
	f.shopify.CreateCustomerErr = errors.New("email has already been taken")

	w := f.postCustomerOrder(t, fullSubmission)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, f.relay.CustomerOrders)
}

func TestCustomerOrder_InvalidJSON(t *testing.T) {
	f := newFixture(t)
	r := f.admin(t, http.MethodPost, "/app/customer-order", strings.NewReader(`{"firstName":`))
	r.Header.Set("Content-Type", "application/json")

	w := f.do(r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decodeJSON(t, w)["success"])
}

func signQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params.Get(k))
	}
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(strings.Join(parts, "&")))
	params.Set("hmac", hex.EncodeToString(mac.Sum(nil)))
	return params.Encode()
}

func TestInstallFlow(t *testing.T) {
	f := newFixture(t)
	const shop = "new.myshopify.com"

	w := f.do(httptest.NewRequest(http.MethodGet, "/auth?shop=New.myshopify.com", nil))
	require.Equal(t, http.StatusFound, w.Code)
	authURL, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, shop, authURL.Host)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	callback := signQuery(url.Values{"shop": {shop}, "code": {"auth-code"}, "state": {state}, "timestamp": {"1700000000"}})
	w = f.do(httptest.NewRequest(http.MethodGet, "/auth/callback?"+callback, nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/app?shop="+shop, w.Header().Get("Location"))

	stored, err := f.sessions.LoadSession(t.Context(), shop)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "shpat_new", stored.AccessToken)
	assert.ElementsMatch(t, []string{"orders/create", "orders/updated", "customers/create", "app/uninstalled"}, f.shopify.WebhookTopics(shop))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, securitymiddleware.SessionCookie, cookies[0].Name)

	r := httptest.NewRequest(http.MethodGet, "/app?shop="+shop, nil)
	r.AddCookie(cookies[0])
	w = f.do(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), shop)

	// the state is single use
	w = f.do(httptest.NewRequest(http.MethodGet, "/auth/callback?"+callback, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthCallback_BadSignature(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/auth/callback?shop=demo.myshopify.com&code=x&state=y&hmac=00", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.oauth.Codes)
}

func TestBeginAuth_InvalidShop(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/auth", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter your shop domain to log in")

	w = f.do(httptest.NewRequest(http.MethodGet, "/auth?shop=evil.example.com", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a valid shop domain to log in")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/auth/login"`)

	post := func(shop string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(url.Values{"shop": {shop}}.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return f.do(r)
	}

	w = post("")
	assert.Contains(t, w.Body.String(), "Please enter your shop domain to log in")
	w = post("not a shop")
	assert.Contains(t, w.Body.String(), "Please enter a valid shop domain to log in")
	w = post("https://Demo.myshopify.com/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth?shop=demo.myshopify.com", w.Header().Get("Location"))
}

func TestAdmin_RequiresIdentity(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/app/sync", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
}

func TestAdmin_Home(t *testing.T) {
	f := newFixture(t)
	f.shopify.Shop = &goshopify.Shop{Name: "Demo Store"}

	w := f.do(f.admin(t, http.MethodGet, "/app", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to Gooscale, Demo Store")
	assert.Contains(t, w.Body.String(), `content="test-key"`)
}

func TestAdmin_HomeShopifyFailure(t *testing.T) {
	f := newFixture(t)
	f.shopify.GetShopErr = errors.New("shopify down")

	w := f.do(f.admin(t, http.MethodGet, "/app", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), api.MsgShopInfoFailed)
}

func TestAdmin_HomeRevokedTokenReinstalls(t *testing.T) {
	f := newFixture(t)
	f.shopify.GetShopErr = goshopify.ResponseError{Status: http.StatusUnauthorized}

	w := f.do(f.admin(t, http.MethodGet, "/app", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth?shop="+testShop, w.Header().Get("Location"))
	stored, _ := f.sessions.LoadSession(t.Context(), testShop)
	assert.Nil(t, stored)
}

func TestAdmin_Connect(t *testing.T) {
	f := newFixture(t)

	w := f.do(f.admin(t, http.MethodGet, "/app/connect", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), mainAppURL+"/auth/register?shop="+testShop)

	w = f.do(f.adminForm(t, "/app/connect", url.Values{"email": {"ada@example.com"}, "password": {"secret"}}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), api.MsgConnected)
	require.Len(t, f.relay.Logins, 1)
	assert.Equal(t, "ada@example.com", f.relay.Logins[0].Email)

	f.relay.AuthErr = &domain.RelayError{Op: "auth", StatusCode: http.StatusUnauthorized}
	w = f.do(f.adminForm(t, "/app/connect", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}}))
	assert.Contains(t, w.Body.String(), api.MsgConnectFailed)
}

func TestAdmin_CookieOnlyPostRejected(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"email": {"attacker@evil.example"}, "password": {"pw"}}

	for _, target := range []string{"/app/connect", "/app/sync", "/app/webhooks", "/app/customer-order"} {
		r := f.withCookie(t, http.MethodPost, target, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.Header.Set("Origin", "https://evil.example")

		w := f.do(r)
		assert.Equal(t, http.StatusForbidden, w.Code, target)
	}

	assert.Empty(t, f.relay.Logins)
	assert.Empty(t, f.relay.LinkedSessions)
	assert.Empty(t, f.relay.Syncs)
	assert.Empty(t, f.shopify.WebhookTopics(testShop))
}

func TestAdmin_FormsCarryIDToken(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{"/app/connect", "/app/sync", "/app/webhooks", "/app/customer-order"} {
		w := f.do(f.withCookie(t, http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Regexp(t, idTokenField, w.Body.String(), target)
	}

	w := f.do(f.withCookie(t, http.MethodGet, "/app/connect", nil))
	match := idTokenField.FindStringSubmatch(w.Body.String())
	require.Len(t, match, 2)
	shop, _, err := f.tokens.Verify(match[1])
	require.NoError(t, err)
	assert.Equal(t, testShop, shop)

	form := url.Values{"email": {"ada@example.com"}, "password": {"secret"}, "id_token": {match[1]}}
	r := f.withCookie(t, http.MethodPost, "/app/connect", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = f.do(r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), api.MsgConnected)
	require.Len(t, f.relay.Logins, 1)
	assert.Equal(t, "ada@example.com", f.relay.Logins[0].Email)
}

func TestAdmin_ConnectLinked(t *testing.T) {
	f := newFixture(t)
	f.relay.Linked = true
	f.relay.StoreConfig = map[string]any{"storeName": "Demo Store"}

	w := f.do(f.admin(t, http.MethodGet, "/app/connect", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Go to Gooscale Dashboard")
	assert.Contains(t, w.Body.String(), "Demo Store")
	assert.NotContains(t, w.Body.String(), `action="/app/connect"`)

	f.relay.StoreConfigErr = &domain.RelayError{Op: "store-config", StatusCode: http.StatusNotFound}
	w = f.do(f.admin(t, http.MethodGet, "/app/connect", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Go to Gooscale Dashboard")
}

func TestAdmin_Sync(t *testing.T) {
	f := newFixture(t)

	w := f.do(f.admin(t, http.MethodGet, "/app/sync", nil))
	assert.Contains(t, w.Body.String(), api.SyncStatusNotConnected)

	w = f.do(f.adminForm(t, "/app/sync", url.Values{}))
	assert.Contains(t, w.Body.String(), api.MsgSyncNotLinked)
	assert.Empty(t, f.relay.Syncs)

	f.relay.Linked = true
	f.relay.SyncID = "sync-42"
	w = f.do(f.adminForm(t, "/app/sync", url.Values{}))
	assert.Contains(t, w.Body.String(), api.MsgSyncStarted)
	assert.Contains(t, w.Body.String(), "sync-42")
	assert.Contains(t, w.Body.String(), api.SyncStatusReady)

	f.relay.SyncErr = &domain.RelayError{Op: "sync", StatusCode: http.StatusBadGateway}
	w = f.do(f.adminForm(t, "/app/sync", url.Values{}))
	assert.Contains(t, w.Body.String(), api.MsgSyncFailed)
}

func TestAdmin_Webhooks(t *testing.T) {
	f := newFixture(t)

	w := f.do(f.adminForm(t, "/app/webhooks", url.Values{"action": {"setup"}}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), api.MsgWebhooksSetUp)
	assert.Contains(t, f.shopify.WebhookTopics(testShop), "app/uninstalled")
	assert.Len(t, f.shopify.WebhookTopics(testShop), 4)

	w = f.do(f.adminForm(t, "/app/webhooks", url.Values{"action": {"delete"}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), api.MsgInvalidAction)

	f.shopify.ListWebhooksErr = errors.New("shopify down")
	w = f.do(f.adminForm(t, "/app/webhooks", url.Values{"action": {"setup"}}))
	assert.Contains(t, w.Body.String(), api.MsgWebhooksFailed)
}

func TestGlobalAccess(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/global-access", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, mainAppURL, w.Header().Get("Location"))

	f = newFixture(t, func(d *api.Deps) { d.GlobalAccessURL = "" })
	w = f.do(httptest.NewRequest(http.MethodGet, "/global-access", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please set MAIN_APP_URL")

	// the admin pages keep linking to the dashboard
	w = f.do(f.admin(t, http.MethodGet, "/app/connect", nil))
	assert.Contains(t, w.Body.String(), mainAppURL+"/auth/register?shop="+testShop)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	f.do(webhookRequest("/webhooks", "orders/create", `{"id":1}`, true))
	w = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gooscale_relay_webhooks_received_total{result="forwarded",topic="orders/create"} 1`)
}
