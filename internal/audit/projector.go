package audit

import (
	"context"
	"errors"
	"time"

	"resort/internal/audit/repository"
	"resort/internal/bookings/events"
	"resort/pkg/kafka"
	"resort/pkg/logger"
)

// Projector persists booking events from the stream into the audit
// collection. Redelivered events are acknowledged without a second write.
type Projector struct {
	repo repository.EventRepository
	log  *logger.Logger
	now  func() time.Time
}

func NewProjector(repo repository.EventRepository, log *logger.Logger) *Projector {
	return &Projector{repo: repo, log: log, now: time.Now}
}

// Handle is a kafka.MessageHandler. Undecodable messages fail permanently and
// go to the DLQ; storage failures are transient and retried.
func (p *Projector) Handle(ctx context.Context, msg kafka.Message) error {
	event, err := events.Decode(msg)
	if err != nil {
		return err
	}
	event.ReceivedAt = p.now().UTC().Truncate(time.Millisecond)

	log := p.log.With("event_id", event.EventID, "booking_id", event.BookingID, "correlation_id", msg.GetCorrelationID())

	err = p.repo.Insert(ctx, &event)
	switch {
	case err == nil:
		log.Info("Booking event recorded", "type", event.Type, "status", event.Status)
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		log.Debug("Booking event already recorded, skipping")
		return nil
	default:
		return kafka.NewTransientError("failed to record booking event", err).
			WithDetail("event_id", event.EventID)
	}
}
