package events

import (
	"context"
	"fmt"
	"time"

	"resort/pkg/kafka"
	"resort/pkg/logger"
	"resort/pkg/model"

	"github.com/google/uuid"
)

const (
	SchemaVersion = "1"
	Source        = "resort-api"

	publishTimeout = 5 * time.Second
)

// Publisher emits booking lifecycle events after the change is committed.
// Publishing never fails the operation that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent)
}

// Encode builds the Kafka message for an event. Events are keyed by target
// so all changes to one object stay ordered within a partition.
func Encode(event model.BookingEvent, correlationID string) (kafka.Message, error) {
	target := model.Target{Type: event.ObjectType, ID: event.ObjectID}
	return kafka.NewMessage().
		WithKey(target.Key()).
		WithEventID(event.EventID).
		WithEventType(string(event.Type)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(correlationID).
		WithTimestamp(event.OccurredAt).
		WithValue(event).
		Build()
}

// Decode reads an event back from a message. Malformed payloads are
// permanent errors so the consumer sends them to the DLQ instead of retrying.
func Decode(msg kafka.Message) (model.BookingEvent, error) {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return model.BookingEvent{}, kafka.NewPermanentError("failed to decode booking event", err)
	}
	if event.EventID == "" {
		event.EventID = msg.GetEventID()
	}
	if event.EventID == "" || event.BookingID <= 0 {
		return model.BookingEvent{}, kafka.NewPermanentError(fmt.Sprintf("booking event at offset %d is missing identifiers", msg.Offset), nil)
	}
	switch event.Type {
	case model.BookingEventCreated, model.BookingEventStatusChanged, model.BookingEventDeleted:
	default:
		return model.BookingEvent{}, kafka.NewPermanentError(fmt.Sprintf("unknown booking event type %q", event.Type), nil)
	}
	return event, nil
}

type kafkaPublisher struct {
	producer kafka.Publisher
	log      *logger.Logger
}

func NewKafkaPublisher(producer kafka.Publisher, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	log := p.log.FromContext(ctx)

	msg, err := Encode(event, logger.RequestIDFromContext(ctx))
	if err != nil {
		log.Error("Failed to encode booking event", "event_id", event.EventID, "booking_id", event.BookingID, "error", err)
		return
	}

	// the request may already be finished; the event must still go out
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.producer.Publish(pubCtx, msg); err != nil {
		log.Error("Failed to publish booking event",
			"event_id", event.EventID,
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, model.BookingEvent) {}
