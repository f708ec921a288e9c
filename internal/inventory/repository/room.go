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
	RoomsCollectionName = "Rooms"
	roomSequence        = "rooms"
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	FindByID(ctx context.Context, id int64) (*model.Room, error)
	Exists(ctx context.Context, id int64) (bool, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	FindByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Room, error)
	Titles(ctx context.Context, ids []int64) (map[int64]string, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, id int64) error
}

type mongoRoomRepository struct {
	store[model.Room]
}

func NewMongoRoomRepository(cfg *config.Config, db *mongo.Database, ids mongotx.IDGenerator) RoomRepository {
	return &mongoRoomRepository{store[model.Room]{
		cfg:        cfg,
		collection: db.Collection(RoomsCollectionName),
		ids:        ids,
		sequence:   roomSequence,
	}}
}

func (r *mongoRoomRepository) Create(ctx context.Context, room *model.Room) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	room.ID = id
	room.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return r.insert(ctx, room)
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, id int64) (*model.Room, error) {
	return r.findByID(ctx, id)
}

func (r *mongoRoomRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, id)
}

func (r *mongoRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	return r.page(ctx, limit, offset)
}

// FindByMinCapacity matches on effective capacity: capacity when positive, beds otherwise.
func (r *mongoRoomRepository) FindByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Room, error) {
	effective := bson.M{"$cond": bson.A{
		bson.M{"$gt": bson.A{"$capacity", 0}},
		"$capacity",
		"$beds",
	}}
	filter := bson.M{"$expr": bson.M{"$gte": bson.A{effective, minCapacity}}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *mongoRoomRepository) Titles(ctx context.Context, ids []int64) (map[int64]string, error) {
	return r.titles(ctx, ids)
}

func (r *mongoRoomRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx)
}

func (r *mongoRoomRepository) Update(ctx context.Context, room *model.Room) error {
	return r.replace(ctx, room.ID, room)
}

func (r *mongoRoomRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}
