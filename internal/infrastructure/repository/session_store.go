package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gooscale-shopify-relay/internal/ports"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Backend identifies which database a DATABASE_URL points at
type Backend string

const (
	BackendMongo    Backend = "mongodb"
	BackendPostgres Backend = "postgres"
)

// BackendFor picks the session backend from the URL scheme
func BackendFor(databaseURL string) (Backend, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL scheme %q", u.Scheme)
	}
}

// SessionStore is an opened session repository and the connection behind it
type SessionStore struct {
	ports.SessionRepository
	Backend Backend
	close   func(context.Context) error
}

func (s *SessionStore) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenSessionStore connects to the database named by databaseURL and
// prepares the sessions collection or table.
func OpenSessionStore(ctx context.Context, databaseURL, databaseName string, logger zerolog.Logger) (*SessionStore, error) {
	backend, err := BackendFor(databaseURL)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(databaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		repo := NewMongoSessionRepository(client.Database(databaseName))
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn().Err(err).Msg("Could not create session index")
		}
		logger.Info().Str("database", databaseName).Msg("Connected to MongoDB")
		return &SessionStore{SessionRepository: repo, Backend: backend, close: client.Disconnect}, nil

	default:
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
		}
		repo := NewPostgresSessionRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info().Msg("Connected to PostgreSQL")
		return &SessionStore{
			SessionRepository: repo,
			Backend:           backend,
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil
	}
}
