package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StateTTL is how long an install flow may take between /auth and the callback
const StateTTL = 10 * time.Minute

// ShopifyService owns the install flow and the stored shop sessions.
// It depends on ports (interfaces) not concrete implementations.
type ShopifyService struct {
	sessions  ports.SessionRepository
	states    ports.OAuthStateStore
	oauth     ports.OAuthExchanger
	verifier  ports.QueryVerifier
	shops     ports.ShopDomainValidator
	tokens    ports.TokenValidator
	webhooks  *WebhookManager
	logger    zerolog.Logger
	now       func() time.Time
	nextState func() string
}

// NewShopifyService creates a new Shopify application service
func NewShopifyService(
	sessions ports.SessionRepository,
	states ports.OAuthStateStore,
	oauth ports.OAuthExchanger,
	verifier ports.QueryVerifier,
	shops ports.ShopDomainValidator,
	tokens ports.TokenValidator,
	webhooks *WebhookManager,
	logger zerolog.Logger,
) *ShopifyService {
	return &ShopifyService{
		sessions:  sessions,
		states:    states,
		oauth:     oauth,
		verifier:  verifier,
		shops:     shops,
		tokens:    tokens,
		webhooks:  webhooks,
		logger:    logger,
		now:       time.Now,
		nextState: func() string { return uuid.NewString() },
	}
}

// NormalizeShop validates a shop domain parameter
func (s *ShopifyService) NormalizeShop(shop string) (string, error) {
	return s.shops.Normalize(shop)
}

// BeginAuth stores a fresh state nonce for shop and returns the Shopify
// authorization URL to redirect to
func (s *ShopifyService) BeginAuth(ctx context.Context, shop string) (string, error) {
	shop, err := s.shops.Normalize(shop)
	if err != nil {
		return "", err
	}

	state := &domain.OAuthState{
		State:     s.nextState(),
		Shop:      shop,
		ExpiresAt: s.now().Add(StateTTL),
	}
	if err := s.states.SaveState(ctx, state); err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to save oauth state")
		return "", fmt.Errorf("failed to save oauth state: %w", err)
	}

	authURL := s.oauth.AuthorizeURL(shop, state.State)
	s.logger.Info().Str("shop", shop).Msg("Generated OAuth authorization URL")
	return authURL, nil
}

// CompleteAuth handles the OAuth callback: it checks the query signature and
// state, exchanges the code, stores the session and subscribes the shop to
// the default webhooks. Webhook failures are logged and not returned.
func (s *ShopifyService) CompleteAuth(ctx context.Context, callback *url.URL) (*domain.Session, error) {
	if err := s.verifier.VerifyQuery(callback); err != nil {
		s.logger.Warn().Err(err).Msg("OAuth callback failed signature check")
		return nil, err
	}

	query := callback.Query()
	shop, err := s.shops.Normalize(query.Get("shop"))
	if err != nil {
		return nil, err
	}

	state, err := s.states.ConsumeState(ctx, query.Get("state"))
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("OAuth callback with unknown state")
		return nil, err
	}
	if state.Shop != shop {
		s.logger.Warn().Str("shop", shop).Str("stateShop", state.Shop).Msg("OAuth state issued for another shop")
		return nil, domain.ErrInvalidState
	}

	accessToken, scopes, err := s.oauth.ExchangeToken(ctx, shop, query.Get("code"))
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	session := &domain.Session{
		Shop:        shop,
		AccessToken: accessToken,
		Scopes:      scopes,
	}
	if err := s.sessions.StoreSession(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to save session")
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Info().Str("shop", shop).Strs("scopes", scopes).Msg("Shop installed")

	if s.webhooks != nil {
		if _, err := s.webhooks.RegisterDefaults(ctx, session); err != nil {
			s.logger.Warn().Err(err).Str("shop", shop).Msg("Webhook registration after install failed")
		}
	}

	return session, nil
}

// LoadSession returns the stored session for shop or domain.ErrNoSession
func (s *ShopifyService) LoadSession(ctx context.Context, shop string) (*domain.Session, error) {
	session, err := s.sessions.LoadSession(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.AccessToken == "" {
		return nil, domain.ErrNoSession
	}
	return session, nil
}

// ShopInfo fetches the shop from Shopify. A revoked token deletes the stored
// session and yields domain.ErrNoSession so the caller can reinstall.
func (s *ShopifyService) ShopInfo(ctx context.Context, session *domain.Session) (*goshopify.Shop, error) {
	if session == nil {
		return nil, domain.ErrNoSession
	}
	info, valid, err := s.tokens.ValidateToken(ctx, session.Shop, session.AccessToken)
	if !valid {
		if delErr := s.sessions.DeleteSessions(ctx, session.Shop); delErr != nil {
			s.logger.Error().Err(delErr).Str("shop", session.Shop).Msg("Failed to delete revoked session")
		}
		return nil, errors.Join(domain.ErrNoSession, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop info: %w", err)
	}
	return info, nil
}

// RegisterWebhooks subscribes the session's shop to the default topics
func (s *ShopifyService) RegisterWebhooks(ctx context.Context, session *domain.Session) (*RegistrationResult, error) {
	return s.webhooks.RegisterDefaults(ctx, session)
}
