package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the collection indexes at startup. The partial
// unique index enforces (title, date) uniqueness among active events at the
// storage layer; soft-deleted documents fall outside the partial filter and
// never block re-creation.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "title", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().
				SetName("uniq_active_title_date").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "is_active", Value: true}}),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("date_asc"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("tags"),
		},
	}

	if _, err := db.Collection(eventsCollection).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("ensure event indexes: %w", err)
	}
	return nil
}
