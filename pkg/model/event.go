package model

import "time"

type BookingEventType string

const (
	BookingEventCreated       BookingEventType = "booking.created"
	BookingEventStatusChanged BookingEventType = "booking.status_changed"
	BookingEventDeleted       BookingEventType = "booking.deleted"
)

type BookingEvent struct {
	EventID        string           `json:"event_id" bson:"_id"`
	Type           BookingEventType `json:"type" bson:"type"`
	BookingID      int64            `json:"booking_id" bson:"booking_id"`
	ObjectType     ObjectType       `json:"object_type" bson:"object_type"`
	ObjectID       int64            `json:"object_id" bson:"object_id"`
	PreviousStatus BookingStatus    `json:"previous_status,omitempty" bson:"previous_status,omitempty"`
	Status         BookingStatus    `json:"status,omitempty" bson:"status,omitempty"`
	StartDate      time.Time        `json:"start_date" bson:"start_date"`
	EndDate        time.Time        `json:"end_date" bson:"end_date"`
	ActorID        *int64           `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at" bson:"occurred_at"`
	ReceivedAt     time.Time        `json:"-" bson:"received_at,omitempty"`
}

func NewBookingEvent(eventType BookingEventType, b *Booking, previous BookingStatus, actorID *int64, at time.Time) BookingEvent {
	return BookingEvent{
		Type:           eventType,
		BookingID:      b.ID,
		ObjectType:     b.ObjectType,
		ObjectID:       b.ObjectID,
		PreviousStatus: previous,
		Status:         b.Status,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		ActorID:        actorID,
		OccurredAt:     at,
	}
}
