package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	"github.com/rs/zerolog"
)

// CustomerHandler relays customers/create events to Gooscale
type CustomerHandler struct {
	relay  ports.RelayClient
	logger zerolog.Logger
}

// NewCustomerHandler creates a new customer webhook handler
func NewCustomerHandler(relay ports.RelayClient, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		relay:  relay,
		logger: logger,
	}
}

// Handle forwards a customer webhook payload
func (h *CustomerHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var customerData map[string]any
	if err := json.Unmarshal(event.Payload, &customerData); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}

	customerID, _ := customerData["id"].(float64)
	ordersCount, _ := customerData["orders_count"].(float64)

	h.logger.Info().
		Str("topic", event.RawTopic).
		Str("shop", event.Shop).
		Float64("customerId", customerID).
		Float64("ordersCount", ordersCount).
		Msg("Processing customer webhook event")

	if err := h.relay.ForwardCustomer(ctx, event.Shop, event.Payload); err != nil {
		return fmt.Errorf("failed to forward customer: %w", err)
	}
	return nil
}
