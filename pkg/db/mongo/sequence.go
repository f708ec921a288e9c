package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CountersCollectionName = "Counters"

// IDGenerator hands out increasing integer ids per named sequence.
type IDGenerator interface {
	Next(ctx context.Context, name string) (int64, error)
}

type counter struct {
	ID    string `bson:"_id"`
	Value int64  `bson:"value"`
}

type mongoSequence struct {
	collection *mongo.Collection
}

func NewSequence(db *mongo.Database) IDGenerator {
	return &mongoSequence{collection: db.Collection(CountersCollectionName)}
}

// Next is called outside booking transactions so the shared counter document
// does not become a write-conflict hotspot. Ids may have gaps.
func (s *mongoSequence) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return c.Value, nil
}
