package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInconsistentTarget = errors.New("booking target is inconsistent")

// Booking is stored with object_type/object_id plus exactly one of
// room_id/cabin_id set, mirroring the target.
type Booking struct {
	ID          int64      `json:"id" bson:"_id"`
	ObjectType  ObjectType `json:"object_type" bson:"object_type"`
	ObjectID    int64      `json:"object_id" bson:"object_id"`
	RoomID      *int64     `json:"room_id" bson:"room_id"`
	CabinID     *int64     `json:"cabin_id" bson:"cabin_id"`
	ObjectTitle string     `json:"object_title,omitempty" bson:"-"`

	UserID      *int64 `json:"user_id" bson:"user_id"`
	LastName    string `json:"last_name" bson:"last_name"`
	FirstName   string `json:"first_name" bson:"first_name"`
	MiddleName  string `json:"middle_name,omitempty" bson:"middle_name,omitempty"`
	Phone       string `json:"phone" bson:"phone"`
	Email       string `json:"email" bson:"email"`
	Citizenship string `json:"citizenship,omitempty" bson:"citizenship,omitempty"`
	Guests      int    `json:"guests" bson:"guests"`

	Comments      string `json:"comments,omitempty" bson:"comments,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty" bson:"payment_method,omitempty"`

	Status    BookingStatus `json:"status" bson:"status"`
	StartDate time.Time     `json:"start_date" bson:"start_date"`
	EndDate   time.Time     `json:"end_date" bson:"end_date"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) SetTarget(t Target) {
	id := t.ID
	b.ObjectType = t.Type
	b.ObjectID = id
	b.RoomID, b.CabinID = nil, nil
	switch t.Type {
	case ObjectTypeRoom:
		b.RoomID = &id
	case ObjectTypeCabin:
		b.CabinID = &id
	}
}

func (b *Booking) Target() Target {
	return Target{Type: b.ObjectType, ID: b.ObjectID}
}

// CheckTarget verifies the stored columns agree with object_type/object_id.
func (b *Booking) CheckTarget() error {
	switch b.ObjectType {
	case ObjectTypeRoom:
		if b.RoomID == nil || b.CabinID != nil || *b.RoomID != b.ObjectID {
			return fmt.Errorf("%w: room booking must reference only room_id=%d", ErrInconsistentTarget, b.ObjectID)
		}
	case ObjectTypeCabin:
		if b.CabinID == nil || b.RoomID != nil || *b.CabinID != b.ObjectID {
			return fmt.Errorf("%w: cabin booking must reference only cabin_id=%d", ErrInconsistentTarget, b.ObjectID)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownObjectType, b.ObjectType)
	}
	if b.ObjectID <= 0 {
		return fmt.Errorf("%w: object id must be positive", ErrInconsistentTarget)
	}
	return nil
}

func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

func (b *Booking) OwnedBy(userID int64) bool {
	return b.UserID != nil && *b.UserID == userID
}

// BookingRequest is the client payload for creating a booking. The contact
// email always comes from the authenticated user.
type BookingRequest struct {
	ObjectType    string    `json:"object_type" validate:"required,object_type"`
	ObjectID      int64     `json:"object_id" validate:"required,gt=0"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" validate:"required"`
	Guests        int       `json:"guests" validate:"omitempty,min=1,max=50"`
	LastName      string    `json:"last_name" validate:"required,min=1,max=100"`
	FirstName     string    `json:"first_name" validate:"required,min=1,max=100"`
	MiddleName    string    `json:"middle_name,omitempty" validate:"omitempty,max=100"`
	Phone         string    `json:"phone" validate:"required,contact_phone"`
	Citizenship   string    `json:"citizenship,omitempty" validate:"omitempty,max=100"`
	Comments      string    `json:"comments,omitempty" validate:"omitempty,max=2000"`
	PaymentMethod string    `json:"payment_method,omitempty" validate:"omitempty,max=50"`
}

type BookingStatusUpdate struct {
	Status string `json:"status" validate:"required,booking_status"`
}
