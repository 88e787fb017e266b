package ports

import (
	"context"

	"gooscale-shopify-relay/internal/domain"
)

// SessionRepository defines the interface for Shopify session persistence, keyed by shop domain
type SessionRepository interface {
	// StoreSession creates or replaces the session for session.Shop
	StoreSession(ctx context.Context, session *domain.Session) error

	// LoadSession returns nil, nil when the shop has no session
	LoadSession(ctx context.Context, shop string) (*domain.Session, error)

	// DeleteSessions removes every session stored for the shop
	DeleteSessions(ctx context.Context, shop string) error

	// ListSessions returns all stored sessions
	ListSessions(ctx context.Context) ([]*domain.Session, error)
}

// OAuthStateStore holds install-flow nonces until the callback consumes them
type OAuthStateStore interface {
	SaveState(ctx context.Context, state *domain.OAuthState) error

	// ConsumeState returns and deletes the state. Unknown or expired
	// states yield domain.ErrInvalidState.
	ConsumeState(ctx context.Context, state string) (*domain.OAuthState, error)
}
