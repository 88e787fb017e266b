package application

import (
	"context"
	"errors"
	"fmt"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	"github.com/rs/zerolog"
)

// WebhookManager subscribes shops to the webhook topics the relay handles
type WebhookManager struct {
	client  ports.ShopifyClient
	address string
	topics  []domain.Topic
	logger  zerolog.Logger
}

// NewWebhookManager creates a manager that points subscriptions at address
func NewWebhookManager(client ports.ShopifyClient, address string, logger zerolog.Logger) *WebhookManager {
	return &WebhookManager{
		client:  client,
		address: address,
		topics:  domain.SubscribedWebhookTopics,
		logger:  logger,
	}
}

// RegistrationResult lists what RegisterDefaults did per topic
type RegistrationResult struct {
	Shop    string
	Created []string
	Skipped []string
}

// RegisterDefaults subscribes the shop to every default topic. Topics already
// subscribed at the same address are skipped, so it is safe to call again.
func (m *WebhookManager) RegisterDefaults(ctx context.Context, session *domain.Session) (*RegistrationResult, error) {
	if session == nil || session.AccessToken == "" {
		return nil, domain.ErrNoSession
	}

	existing, err := m.client.ListWebhooks(ctx, session.Shop, session.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	subscribed := make(map[string]bool, len(existing))
	for _, hook := range existing {
		if hook.Address == m.address {
			subscribed[hook.Topic] = true
		}
	}

	result := &RegistrationResult{Shop: session.Shop}
	var errs []error
	for _, topic := range m.topics {
		name := topic.String()
		if subscribed[name] {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		if _, err := m.client.CreateWebhook(ctx, session.Shop, session.AccessToken, name, m.address); err != nil {
			m.logger.Error().Err(err).Str("shop", session.Shop).Str("topic", name).Msg("Failed to register webhook")
			errs = append(errs, err)
			continue
		}
		result.Created = append(result.Created, name)
	}

	m.logger.Info().
		Str("shop", session.Shop).
		Strs("created", result.Created).
		Strs("skipped", result.Skipped).
		Msg("Webhook registration finished")

	return result, errors.Join(errs...)
}

// RegisterAll runs RegisterDefaults for every stored session. Failures for
// one shop are logged and do not stop the others.
func (m *WebhookManager) RegisterAll(ctx context.Context, sessions ports.SessionRepository) ([]*RegistrationResult, int, error) {
	list, err := sessions.ListSessions(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	var results []*RegistrationResult
	failed := 0
	for _, session := range list {
		if ctx.Err() != nil {
			return results, failed, ctx.Err()
		}
		result, err := m.RegisterDefaults(ctx, session)
		if err != nil {
			failed++
			m.logger.Warn().Err(err).Str("shop", session.Shop).Msg("Webhook registration failed for shop")
		}
		if result != nil {
			results = append(results, result)
		}
	}
	return results, failed, nil
}
