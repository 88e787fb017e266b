package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/infrastructure/repository/entity"
	"gooscale-shopify-relay/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionsCollection is the collection holding one document per shop
const SessionsCollection = "shopify_sessions"

// MongoSessionRepository implements SessionRepository using MongoDB
type MongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new MongoDB session repository
func NewMongoSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{
		collection: db.Collection(SessionsCollection),
	}
}

var _ ports.SessionRepository = (*MongoSessionRepository)(nil)

// EnsureIndexes creates the unique index on shop
func (r *MongoSessionRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "shop", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create session index: %w", err)
	}
	return nil
}

// StoreSession saves or updates the session for its shop
func (r *MongoSessionRepository) StoreSession(ctx context.Context, session *domain.Session) error {
	doc := entity.MongoSessionDocFromDomain(session)
	now := time.Now()
	doc.UpdatedAt = now

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"shop": session.Shop}
	update := bson.M{
		"$set": bson.M{
			"shop":        doc.Shop,
			"accessToken": doc.AccessToken,
			"scopes":      doc.Scopes,
			"updatedAt":   doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// LoadSession retrieves the session for a shop
func (r *MongoSessionRepository) LoadSession(ctx context.Context, shop string) (*domain.Session, error) {
	var doc entity.MongoSessionDoc
	filter := bson.M{"shop": shop}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return doc.ToDomain(), nil
}

// DeleteSessions deletes every session stored for a shop
func (r *MongoSessionRepository) DeleteSessions(ctx context.Context, shop string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"shop": shop})
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	return nil
}

// ListSessions retrieves all sessions
func (r *MongoSessionRepository) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "shop", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*domain.Session
	for cursor.Next(ctx) {
		var doc entity.MongoSessionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode session: %w", err)
		}
		sessions = append(sessions, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return sessions, nil
}
