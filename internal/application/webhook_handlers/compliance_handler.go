package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	"github.com/rs/zerolog"
)

// ComplianceHandler answers the mandatory privacy webhooks. The app keeps no
// customer data, so only shop/redact changes anything.
type ComplianceHandler struct {
	sessions ports.SessionRepository
	logger   zerolog.Logger
}

func NewComplianceHandler(sessions ports.SessionRepository, logger zerolog.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		sessions: sessions,
		logger:   logger,
	}
}

type compliancePayload struct {
	ShopID          int64  `json:"shop_id"`
	ShopDomain      string `json:"shop_domain"`
	OrdersRequested []any  `json:"orders_requested"`
	OrdersToRedact  []any  `json:"orders_to_redact"`
	Customer        struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"customer"`
	DataRequest struct {
		ID int64 `json:"id"`
	} `json:"data_request"`
}

func (h *ComplianceHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload compliancePayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			h.logger.Warn().Err(err).Str("topic", event.RawTopic).Str("shop", event.Shop).Msg("Unreadable compliance payload")
		}
	}

	shop := event.Shop
	if shop == "" {
		shop = payload.ShopDomain
	}

	switch event.Topic {
	case domain.TopicCustomersDataRequest:
		h.logger.Info().
			Str("shop", shop).
			Int64("customerId", payload.Customer.ID).
			Int64("dataRequestId", payload.DataRequest.ID).
			Int("ordersRequested", len(payload.OrdersRequested)).
			Msg("Customer data request received, no customer data stored")
	case domain.TopicCustomersRedact:
		h.logger.Info().
			Str("shop", shop).
			Int64("customerId", payload.Customer.ID).
			Int("ordersToRedact", len(payload.OrdersToRedact)).
			Msg("Customer redact received, no customer data stored")
	case domain.TopicShopRedact:
		if shop == "" {
			return fmt.Errorf("%w: no shop domain", errInvalidPayload)
		}
		if err := h.sessions.DeleteSessions(ctx, shop); err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}
		h.logger.Info().Str("shop", shop).Msg("Shop redacted - sessions deleted")
	default:
		return fmt.Errorf("not a compliance topic: %s", event.RawTopic)
	}
	return nil
}
