package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "gooscale:oauth_state:"

// StateStore keeps OAuth state nonces in Redis with a TTL
type StateStore struct {
	client *goredis.Client
}

var _ ports.OAuthStateStore = (*StateStore)(nil)

func NewStateStore(client *goredis.Client) *StateStore {
	return &StateStore{client: client}
}

// NewClient parses redisURL and checks the server answers
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (s *StateStore) SaveState(ctx context.Context, state *domain.OAuthState) error {
	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("oauth state already expired")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode oauth state: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+state.State, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// ConsumeState reads and deletes the state in one GETDEL so a nonce works once
func (s *StateStore) ConsumeState(ctx context.Context, state string) (*domain.OAuthState, error) {
	if state == "" {
		return nil, domain.ErrInvalidState
	}
	payload, err := s.client.GetDel(ctx, keyPrefix+state).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrInvalidState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load oauth state: %w", err)
	}

	var stored domain.OAuthState
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode oauth state: %w", err)
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, domain.ErrInvalidState
	}
	return &stored, nil
}
