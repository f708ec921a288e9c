package repository

import (
	"context"
	"fmt"
	"time"

	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const LocksCollectionName = "Booking_locks"

// ClaimRepository serializes writers on one object across instances. Claim
// must run inside a transaction: it bumps the object's claim document, so two
// transactions claiming the same object write-conflict and one is retried.
type ClaimRepository interface {
	Claim(ctx context.Context, target model.Target) error
}

type mongoClaimRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewClaimRepository(cfg *config.Config, db *mongo.Database) ClaimRepository {
	return &mongoClaimRepository{
		cfg:        cfg,
		collection: db.Collection(LocksCollectionName),
	}
}

func (r *mongoClaimRepository) Claim(ctx context.Context, target model.Target) error {
	if !mongotx.InTransaction(ctx) {
		return fmt.Errorf("claim on %s requires a transaction", target)
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": target.Key()},
		bson.M{
			"$inc": bson.M{"version": int64(1)},
			"$set": bson.M{
				"object_type": target.Type,
				"object_id":   target.ID,
				"claimed_at":  time.Now().UTC().Truncate(time.Millisecond),
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to claim %s: %w", target, err)
	}
	return nil
}

// ReferenceGuard lets the inventory refuse to delete objects that bookings
// still reference, under the same claim booking creation takes.
type ReferenceGuard struct {
	claims   ClaimRepository
	bookings BookingRepository
}

func NewReferenceGuard(claims ClaimRepository, bookings BookingRepository) *ReferenceGuard {
	return &ReferenceGuard{claims: claims, bookings: bookings}
}

func (g *ReferenceGuard) Claim(ctx context.Context, target model.Target) error {
	return g.claims.Claim(ctx, target)
}

func (g *ReferenceGuard) HasBookings(ctx context.Context, target model.Target) (bool, error) {
	return g.bookings.HasBookings(ctx, target)
}
