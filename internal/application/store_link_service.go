package application

import (
	"context"
	"fmt"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	"github.com/rs/zerolog"
)

// UnknownSyncID is reported when Gooscale accepts a sync without an id
const UnknownSyncID = "unknown"

// StoreLinkService links shops to Gooscale accounts and drives product sync
type StoreLinkService struct {
	relay  ports.RelayClient
	scope  string
	logger zerolog.Logger
}

// NewStoreLinkService creates the service. scope is sent to Gooscale as the
// granted Shopify scope when a store is linked.
func NewStoreLinkService(relay ports.RelayClient, scope string, logger zerolog.Logger) *StoreLinkService {
	return &StoreLinkService{
		relay:  relay,
		scope:  scope,
		logger: logger,
	}
}

// Connect logs the merchant into Gooscale and links the session's shop to
// that account
func (s *StoreLinkService) Connect(ctx context.Context, session *domain.Session, creds ports.GooscaleCredentials) (map[string]any, error) {
	if session == nil {
		return nil, domain.ErrNoSession
	}

	auth, err := s.relay.Authenticate(ctx, session.Shop, creds)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", session.Shop).Msg("Gooscale authentication failed")
		return nil, fmt.Errorf("failed to authenticate with gooscale: %w", err)
	}

	linked, err := s.relay.LinkStore(ctx, auth.Token, session, s.scope)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", session.Shop).Msg("Failed to link store")
		return nil, fmt.Errorf("failed to link store: %w", err)
	}

	s.logger.Info().Str("shop", session.Shop).Msg("Store linked to Gooscale")
	return linked, nil
}

// IsLinked reports the link status. It never fails.
func (s *StoreLinkService) IsLinked(ctx context.Context, shop string) bool {
	return s.relay.IsStoreLinked(ctx, shop)
}

// Sync starts a product sync and returns its id. Shops that are not linked
// fail with domain.ErrStoreNotLinked without calling the sync endpoint.
func (s *StoreLinkService) Sync(ctx context.Context, shop string) (string, error) {
	if !s.relay.IsStoreLinked(ctx, shop) {
		return "", domain.ErrStoreNotLinked
	}

	result, err := s.relay.SyncProducts(ctx, shop)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Product sync failed")
		return "", fmt.Errorf("failed to sync products: %w", err)
	}

	syncID := result.SyncID
	if syncID == "" {
		syncID = UnknownSyncID
	}
	s.logger.Info().Str("shop", shop).Str("syncId", syncID).Msg("Product sync started")
	return syncID, nil
}

// StoreConfig returns the configuration Gooscale holds for the shop
func (s *StoreLinkService) StoreConfig(ctx context.Context, shop string) (map[string]any, error) {
	cfg, err := s.relay.GetStoreConfig(ctx, shop)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to load store config")
		return nil, fmt.Errorf("failed to load store config: %w", err)
	}
	return cfg, nil
}
