package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"gooscale-shopify-relay/internal/application"
	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/infrastructure/metrics"
	"gooscale-shopify-relay/internal/infrastructure/shopify"
	"gooscale-shopify-relay/internal/ports"

	"github.com/rs/zerolog"
)

// Banner texts of the admin pages
const (
	MsgConnected         = "Your Shopify store has been successfully connected to your Gooscale account."
	MsgConnectFailed     = "Failed to connect to Gooscale. Please check your credentials and try again."
	MsgSyncNotLinked     = "Your store is not connected to Gooscale. Please connect your store first."
	MsgSyncStarted       = "Product synchronization started successfully."
	MsgSyncFailed        = "Failed to sync products with Gooscale. Please try again."
	MsgWebhooksSetUp     = "Webhooks have been successfully set up. Your store will now sync with Gooscale automatically."
	MsgWebhooksFailed    = "Failed to set up webhooks. Please try again later."
	MsgInvalidAction     = "Invalid action"
	MsgShopInfoFailed    = "Failed to load your store details from Shopify."
	msgCustomerFailed    = "Failed to create customer in Shopify"
	msgInvalidSubmission = "Invalid request body"
)

// Sync statuses shown on the sync page
const (
	SyncStatusNotConnected = "not_connected"
	SyncStatusReady        = "ready"
)

var customerFields = []formField{
	{Name: "firstName", Label: "First name", Type: "text"},
	{Name: "lastName", Label: "Last name", Type: "text"},
	{Name: "email", Label: "Email", Type: "email"},
	{Name: "phone", Label: "Phone", Type: "tel"},
	{Name: "address1", Label: "Address", Type: "text"},
	{Name: "city", Label: "City", Type: "text"},
	{Name: "province", Label: "Province", Type: "text"},
	{Name: "country", Label: "Country", Type: "text"},
	{Name: "zip", Label: "Zip code", Type: "text"},
}

// appPages serves the embedded admin. Every route runs behind the session
// middleware, so the session is always in the request context.
type appPages struct {
	apiKey     string
	mainAppURL string

	shopify   *application.ShopifyService
	storeLink *application.StoreLinkService
	orders    *application.CustomerOrderService
	tokens    *shopify.SessionTokenVerifier
	metrics   *metrics.Metrics
	pages     *renderer
	logger    zerolog.Logger
}

func (a *appPages) page(r *http.Request, title string) (*domain.Session, *pageData) {
	session := domain.GetSessionFromContext(r.Context())
	data := &pageData{
		Title:      title,
		APIKey:     a.apiKey,
		Embedded:   true,
		Shop:       session.Shop,
		MainAppURL: a.mainAppURL,
	}
	token, err := a.tokens.Sign(session.Shop, FormTokenTTL)
	if err != nil {
		a.logger.Error().Err(err).Str("shop", session.Shop).Msg("Failed to sign form token")
	}
	data.IDToken = token
	return session, data
}

func (a *appPages) home(w http.ResponseWriter, r *http.Request) {
	session, data := a.page(r, "Gooscale")

	info, err := a.shopify.ShopInfo(r.Context(), session)
	switch {
	case errors.Is(err, domain.ErrNoSession):
		http.Redirect(w, r, "/auth?shop="+url.QueryEscape(session.Shop), http.StatusFound)
		return
	case err != nil:
		data.Banner = errorBanner("Error", MsgShopInfoFailed)
	default:
		data.ShopName = info.Name
	}

	data.Linked = a.storeLink.IsLinked(r.Context(), session.Shop)
	a.pages.render(w, http.StatusOK, "home", data)
}

func (a *appPages) connectPage(r *http.Request) (*domain.Session, *pageData) {
	session, data := a.page(r, "Connect to Gooscale")
	data.RegisterURL = a.mainAppURL + "/auth/register?shop=" + url.QueryEscape(session.Shop)
	return session, data
}

func (a *appPages) connect(w http.ResponseWriter, r *http.Request) {
	session, data := a.connectPage(r)
	data.Linked = a.storeLink.IsLinked(r.Context(), session.Shop)
	if data.Linked {
		// the page still renders without the account details
		data.StoreConfig, _ = a.storeLink.StoreConfig(r.Context(), session.Shop)
	}
	a.pages.render(w, http.StatusOK, "connect", data)
}

func (a *appPages) submitConnect(w http.ResponseWriter, r *http.Request) {
	session, data := a.connectPage(r)

	creds := ports.GooscaleCredentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if _, err := a.storeLink.Connect(r.Context(), session, creds); err != nil {
		data.Banner = errorBanner("Connection failed", MsgConnectFailed)
		a.pages.render(w, http.StatusOK, "connect", data)
		return
	}

	data.Banner = successBanner("Store connected", MsgConnected)
	data.Linked = a.storeLink.IsLinked(r.Context(), session.Shop)
	a.pages.render(w, http.StatusOK, "connect", data)
}

func (a *appPages) syncPage(r *http.Request) (*domain.Session, *pageData) {
	session, data := a.page(r, "Sync products")
	data.Linked = a.storeLink.IsLinked(r.Context(), session.Shop)
	data.SyncStatus = SyncStatusNotConnected
	if data.Linked {
		data.SyncStatus = SyncStatusReady
	}
	return session, data
}

func (a *appPages) sync(w http.ResponseWriter, r *http.Request) {
	_, data := a.syncPage(r)
	a.pages.render(w, http.StatusOK, "sync", data)
}

func (a *appPages) startSync(w http.ResponseWriter, r *http.Request) {
	session, data := a.syncPage(r)

	syncID, err := a.storeLink.Sync(r.Context(), session.Shop)
	switch {
	case errors.Is(err, domain.ErrStoreNotLinked):
		data.Banner = errorBanner("Store not connected", MsgSyncNotLinked)
	case err != nil:
		data.Banner = errorBanner("Sync failed", MsgSyncFailed)
	default:
		data.SyncID = syncID
		data.Banner = successBanner("Sync started", MsgSyncStarted)
	}
	a.pages.render(w, http.StatusOK, "sync", data)
}

func (a *appPages) webhooksPage(r *http.Request) (*domain.Session, *pageData) {
	session, data := a.page(r, "Webhooks")
	for _, topic := range domain.RelayedWebhookTopics {
		data.Topics = append(data.Topics, topic.String())
	}
	return session, data
}

func (a *appPages) webhooks(w http.ResponseWriter, r *http.Request) {
	_, data := a.webhooksPage(r)
	a.pages.render(w, http.StatusOK, "webhooks", data)
}

func (a *appPages) setupWebhooks(w http.ResponseWriter, r *http.Request) {
	session, data := a.webhooksPage(r)

	if r.FormValue("action") != "setup" {
		data.Banner = errorBanner("Error", MsgInvalidAction)
		a.pages.render(w, http.StatusBadRequest, "webhooks", data)
		return
	}

	if _, err := a.shopify.RegisterWebhooks(r.Context(), session); err != nil {
		a.logger.Error().Err(err).Str("shop", session.Shop).Msg("Webhook setup failed")
		data.Banner = errorBanner("Webhook setup failed", MsgWebhooksFailed)
		a.pages.render(w, http.StatusOK, "webhooks", data)
		return
	}

	data.Banner = successBanner("Webhooks set up", MsgWebhooksSetUp)
	a.pages.render(w, http.StatusOK, "webhooks", data)
}

func (a *appPages) customerOrder(w http.ResponseWriter, r *http.Request) {
	_, data := a.page(r, "Customer order")
	data.Fields = customerFields
	a.pages.render(w, http.StatusOK, "customer_order", data)
}

type customerOrderResponse struct {
	Success       bool     `json:"success"`
	CustomerID    uint64   `json:"customerId,omitempty"`
	Error         string   `json:"error,omitempty"`
	MissingFields []string `json:"missingFields,omitempty"`
}

func (a *appPages) submitCustomerOrder(w http.ResponseWriter, r *http.Request) {
	session := domain.GetSessionFromContext(r.Context())

	submission, err := decodeSubmission(w, r)
	if err != nil {
		a.metrics.CustomerOrder("invalid")
		writeJSON(w, http.StatusBadRequest, customerOrderResponse{Error: msgInvalidSubmission})
		return
	}

	customerID, err := a.orders.Submit(r.Context(), session, submission)
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		a.metrics.CustomerOrder("invalid")
		writeJSON(w, http.StatusBadRequest, customerOrderResponse{
			Error:         validationErr.Error(),
			MissingFields: validationErr.MissingFields,
		})
		return
	case err != nil:
		a.metrics.CustomerOrder("failed")
		writeJSON(w, http.StatusBadRequest, customerOrderResponse{Error: msgCustomerFailed})
		return
	}

	a.metrics.CustomerOrder("created")
	writeJSON(w, http.StatusOK, customerOrderResponse{Success: true, CustomerID: customerID})
}

// decodeSubmission reads a JSON body or, for any other content type, the form
func decodeSubmission(w http.ResponseWriter, r *http.Request) (*domain.CustomerOrderSubmission, error) {
	var submission domain.CustomerOrderSubmission
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&submission); err != nil {
			return nil, err
		}
		return &submission, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	submission = domain.CustomerOrderSubmission{
		FirstName: r.PostForm.Get("firstName"),
		LastName:  r.PostForm.Get("lastName"),
		Email:     r.PostForm.Get("email"),
		Phone:     r.PostForm.Get("phone"),
		Address1:  r.PostForm.Get("address1"),
		City:      r.PostForm.Get("city"),
		Province:  r.PostForm.Get("province"),
		Country:   r.PostForm.Get("country"),
		Zip:       r.PostForm.Get("zip"),
	}
	return &submission, nil
}
