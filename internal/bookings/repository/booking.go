package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "resort/internal/bookings/errors"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName  = "Bookings"
	bookingSequence = "bookings"
)

type BookingRepository interface {
	// NextID allocates an id outside any transaction.
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id int64) (*model.Booking, error)
	HasOverlap(ctx context.Context, target model.Target, r model.DateRange) (bool, error)
	OverlappingObjectIDs(ctx context.Context, objectType model.ObjectType, r model.DateRange) (map[int64]struct{}, error)
	CompareAndSetStatus(ctx context.Context, id int64, from, to model.BookingStatus, at time.Time) error
	Delete(ctx context.Context, id int64) error
	FindForUser(ctx context.Context, userID int64, email string) ([]*model.Booking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context) (int64, error)
	HasBookings(ctx context.Context, target model.Target) (bool, error)
	DetachUser(ctx context.Context, userID int64) (int64, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	ids        mongotx.IDGenerator
}

func NewMongoBookingRepository(cfg *config.Config, db *mongo.Database, ids mongotx.IDGenerator) BookingRepository {
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		ids:        ids,
	}
}

// OverlapFilter matches active bookings whose [start_date, end_date)
// intersects r. Creation and search share it so they agree on availability.
func OverlapFilter(r model.DateRange) bson.M {
	return bson.M{
		"status":     bson.M{"$in": model.ActiveStatusStrings()},
		"start_date": bson.M{"$lt": r.End.UTC()},
		"end_date":   bson.M{"$gt": r.Start.UTC()},
	}
}

// TargetFilter matches bookings on one object.
func TargetFilter(target model.Target) bson.M {
	return bson.M{
		"object_type": target.Type,
		"object_id":   target.ID,
	}
}

// OwnerFilter matches a user's bookings plus detached bookings made with
// their email.
func OwnerFilter(userID int64, email string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"user_id": userID},
		bson.M{"user_id": nil, "email": email},
	}}
}

func merge(filters ...bson.M) bson.M {
	out := bson.M{}
	for _, f := range filters {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}

func (r *mongoBookingRepository) NextID(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()
	return r.ids.Next(ctx, bookingSequence)
}

func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	if err := booking.CheckTarget(); err != nil {
		return err
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) HasOverlap(ctx context.Context, target model.Target, dr model.DateRange) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := merge(TargetFilter(target), OverlapFilter(dr))
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}
	return n > 0, nil
}

func (r *mongoBookingRepository) OverlappingObjectIDs(ctx context.Context, objectType model.ObjectType, dr model.DateRange) (map[int64]struct{}, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := merge(bson.M{"object_type": objectType}, OverlapFilter(dr))
	values, err := r.collection.Distinct(ctx, "object_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find booked objects: %w", err)
	}

	busy := make(map[int64]struct{}, len(values))
	for _, v := range values {
		switch id := v.(type) {
		case int64:
			busy[id] = struct{}{}
		case int32:
			busy[int64(id)] = struct{}{}
		}
	}
	return busy, nil
}

func (r *mongoBookingRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to model.BookingStatus, at time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		exists, err := r.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return bookingserrors.ErrNotFound
		}
		return bookingserrors.ErrStatusChanged
	}
	return nil
}

func (r *mongoBookingRepository) exists(ctx context.Context, id int64) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check booking: %w", err)
	}
	return n > 0, nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) FindForUser(ctx context.Context, userID int64, email string) ([]*model.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, OwnerFilter(userID, email), opts)
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// HasBookings reports whether any booking, in any status, references target.
func (r *mongoBookingRepository) HasBookings(ctx context.Context, target model.Target) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, TargetFilter(target), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check bookings for %s: %w", target, err)
	}
	return n > 0, nil
}

func (r *mongoBookingRepository) DetachUser(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"user_id": nil, "updated_at": time.Now().UTC().Truncate(time.Millisecond)}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to detach bookings of user %d: %w", userID, err)
	}
	return result.ModifiedCount, nil
}
