package repository

import (
	"context"
	"errors"
	"fmt"

	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Booking_events"

// ErrDuplicate means an event with the same id was already stored.
var ErrDuplicate = errors.New("booking event already recorded")

type EventRepository interface {
	Insert(ctx context.Context, event *model.BookingEvent) error
	FindByBooking(ctx context.Context, bookingID int64) ([]*model.BookingEvent, error)
}

type mongoEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventRepository(cfg *config.Config, db *mongo.Database) EventRepository {
	return &mongoEventRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// Insert keys the document by event id so redelivered messages are rejected
// by the primary key.
func (r *mongoEventRepository) Insert(ctx context.Context, event *model.BookingEvent) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert booking event %s: %w", event.EventID, err)
	}
	return nil
}

func (r *mongoEventRepository) FindByBooking(ctx context.Context, bookingID int64) ([]*model.BookingEvent, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find events for booking %d: %w", bookingID, err)
	}
	defer cursor.Close(ctx)

	events := []*model.BookingEvent{}
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode booking events: %w", err)
	}
	return events, nil
}
