package domain

import (
	"context"
	"time"
)

// Session is the persisted Shopify install for one shop
type Session struct {
	Shop        string    `json:"shop"`
	AccessToken string    `json:"-"`
	Scopes      []string  `json:"scopes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OAuthState is the single-use nonce issued when an install flow begins
type OAuthState struct {
	State     string    `json:"state"`
	Shop      string    `json:"shop"`
	ExpiresAt time.Time `json:"expires_at"`
}

type contextKey string

const sessionKey contextKey = "shopify_session"

// WithSession stores the authenticated session in the context
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSessionFromContext returns the authenticated session, or nil
func GetSessionFromContext(ctx context.Context) *Session {
	if session, ok := ctx.Value(sessionKey).(*Session); ok {
		return session
	}
	return nil
}
