package repository

import (
	"context"
	"time"

	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CabinsCollectionName = "Cabins"
	cabinSequence        = "cabins"
)

type CabinRepository interface {
	Create(ctx context.Context, cabin *model.Cabin) error
	FindByID(ctx context.Context, id int64) (*model.Cabin, error)
	Exists(ctx context.Context, id int64) (bool, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Cabin, error)
	FindByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Cabin, error)
	Titles(ctx context.Context, ids []int64) (map[int64]string, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, cabin *model.Cabin) error
	Delete(ctx context.Context, id int64) error
}

type mongoCabinRepository struct {
	store[model.Cabin]
}

func NewMongoCabinRepository(cfg *config.Config, db *mongo.Database, ids mongotx.IDGenerator) CabinRepository {
	return &mongoCabinRepository{store[model.Cabin]{
		cfg:        cfg,
		collection: db.Collection(CabinsCollectionName),
		ids:        ids,
		sequence:   cabinSequence,
	}}
}

func (r *mongoCabinRepository) Create(ctx context.Context, cabin *model.Cabin) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	cabin.ID = id
	cabin.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return r.insert(ctx, cabin)
}

func (r *mongoCabinRepository) FindByID(ctx context.Context, id int64) (*model.Cabin, error) {
	return r.findByID(ctx, id)
}

func (r *mongoCabinRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, id)
}

func (r *mongoCabinRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Cabin, error) {
	return r.page(ctx, limit, offset)
}

func (r *mongoCabinRepository) FindByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Cabin, error) {
	filter := bson.M{"beds": bson.M{"$gte": minCapacity}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *mongoCabinRepository) Titles(ctx context.Context, ids []int64) (map[int64]string, error) {
	return r.titles(ctx, ids)
}

func (r *mongoCabinRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx)
}

func (r *mongoCabinRepository) Update(ctx context.Context, cabin *model.Cabin) error {
	return r.replace(ctx, cabin.ID, cabin)
}

func (r *mongoCabinRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}
