package entity

import (
	"testing"
	"time"

	"gooscale-shopify-relay/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoSessionDoc_BSONKeepsToken(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	session := &domain.Session{
		Shop:        "demo.myshopify.com",
		AccessToken: "shpat_123",
		Scopes:      []string{"read_orders"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	raw, err := bson.Marshal(MongoSessionDocFromDomain(session))
	assert.NoError(t, err)

	var doc MongoSessionDoc
	assert.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, session, doc.ToDomain())
	assert.True(t, doc.ID.IsZero())
}
