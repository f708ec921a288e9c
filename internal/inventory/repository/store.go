package repository

import (
	"context"
	"errors"
	"fmt"

	inventoryerrors "resort/internal/inventory/errors"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// store holds the collection plumbing shared by rooms and cabins.
type store[T any] struct {
	cfg        *config.Config
	collection *mongo.Collection
	ids        mongotx.IDGenerator
	sequence   string
}

func (s *store[T]) nextID(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()
	return s.ids.Next(ctx, s.sequence)
}

func (s *store[T]) insert(ctx context.Context, doc *T) error {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", s.collection.Name(), err)
	}
	return nil
}

func (s *store[T]) findByID(ctx context.Context, id int64) (*T, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var doc T
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, inventoryerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s %d: %w", s.collection.Name(), id, err)
	}
	return &doc, nil
}

func (s *store[T]) exists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check %s %d: %w", s.collection.Name(), id, err)
	}
	return n > 0, nil
}

func (s *store[T]) find(ctx context.Context, filter any, opts *options.FindOptions) ([]*T, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", s.collection.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []*T{}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.collection.Name(), err)
	}
	return docs, nil
}

func (s *store[T]) page(ctx context.Context, limit int, offset int64) ([]*T, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	return s.find(ctx, bson.M{}, opts)
}

func (s *store[T]) count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	n, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.collection.Name(), err)
	}
	return n, nil
}

func (s *store[T]) replace(ctx context.Context, id int64, doc *T) error {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("failed to update %s %d: %w", s.collection.Name(), id, err)
	}
	if result.MatchedCount == 0 {
		return inventoryerrors.ErrNotFound
	}
	return nil
}

func (s *store[T]) delete(ctx context.Context, id int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", s.collection.Name(), id, err)
	}
	if result.DeletedCount == 0 {
		return inventoryerrors.ErrNotFound
	}
	return nil
}

type titleDoc struct {
	ID    int64  `bson:"_id"`
	Title string `bson:"title"`
}

func (s *store[T]) titles(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"title": 1})
	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s titles: %w", s.collection.Name(), err)
	}
	defer cursor.Close(ctx)

	var docs []titleDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s titles: %w", s.collection.Name(), err)
	}
	for _, d := range docs {
		out[d.ID] = d.Title
	}
	return out, nil
}
