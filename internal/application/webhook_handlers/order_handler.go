package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	"github.com/rs/zerolog"
)

// OrderHandler relays order webhook events to Gooscale
type OrderHandler struct {
	relay  ports.RelayClient
	logger zerolog.Logger
}

// NewOrderHandler creates a new order webhook handler
func NewOrderHandler(relay ports.RelayClient, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		relay:  relay,
		logger: logger,
	}
}

// Handle forwards an orders/create or orders/updated payload
func (h *OrderHandler) Handle(ctx context.Context, event *domain.WebhookEvent, eventType domain.OrderEventType) error {
	var orderData map[string]any
	if err := json.Unmarshal(event.Payload, &orderData); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}

	// Extract order ID and number for logging
	orderID, _ := orderData["id"].(float64)
	orderNumber, _ := orderData["order_number"].(float64)
	financialStatus, _ := orderData["financial_status"].(string)

	h.logger.Info().
		Str("topic", event.RawTopic).
		Str("shop", event.Shop).
		Float64("orderId", orderID).
		Float64("orderNumber", orderNumber).
		Str("financialStatus", financialStatus).
		Msg("Processing order webhook event")

	if err := h.relay.ForwardOrder(ctx, event.Shop, event.Payload, eventType); err != nil {
		return fmt.Errorf("failed to forward order: %w", err)
	}
	return nil
}
