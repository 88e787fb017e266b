package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	"github.com/rs/zerolog"
)

// AppUninstalledHandler drops the stored session when a shop removes the app
type AppUninstalledHandler struct {
	sessions ports.SessionRepository
	logger   zerolog.Logger
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(sessions ports.SessionRepository, logger zerolog.Logger) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Handle deletes every session of the uninstalling shop. The shop comes from
// the delivery header and falls back to the payload's myshopify_domain.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shopDomain := event.Shop
	if shopDomain == "" {
		var shopData struct {
			Domain          string `json:"domain"`
			MyshopifyDomain string `json:"myshopify_domain"`
		}
		if err := json.Unmarshal(event.Payload, &shopData); err != nil {
			return fmt.Errorf("%w: %v", errInvalidPayload, err)
		}
		shopDomain = shopData.MyshopifyDomain
		if shopDomain == "" {
			shopDomain = shopData.Domain
		}
	}
	if shopDomain == "" {
		return fmt.Errorf("%w: no shop domain", errInvalidPayload)
	}

	if err := h.sessions.DeleteSessions(ctx, shopDomain); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	h.logger.Info().
		Str("topic", event.RawTopic).
		Str("shop", shopDomain).
		Msg("App uninstalled - sessions deleted")
	return nil
}
