package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"resort/internal/audit/repository"
	"resort/internal/bookings/events"
	"resort/pkg/kafka"
	"resort/pkg/logger"
	"resort/pkg/model"
)

type memoryEventRepo struct {
	events map[string]*model.BookingEvent
	err    error
}

func (r *memoryEventRepo) Insert(_ context.Context, event *model.BookingEvent) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.events[event.EventID]; ok {
		return repository.ErrDuplicate
	}
	r.events[event.EventID] = event
	return nil
}

func (r *memoryEventRepo) FindByBooking(_ context.Context, bookingID int64) ([]*model.BookingEvent, error) {
	out := []*model.BookingEvent{}
	for _, e := range r.events {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func createdMessage(t *testing.T) kafka.Message {
	t.Helper()
	b := &model.Booking{
		ID:         11,
		ObjectType: model.ObjectTypeRoom,
		ObjectID:   2,
		Status:     model.BookingStatusPending,
		StartDate:  time.Date(2026, 7, 1, 14, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 7, 4, 12, 0, 0, 0, time.UTC),
	}
	event := model.NewBookingEvent(model.BookingEventCreated, b, "", nil, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	event.EventID = "evt-1"

	msg, err := events.Encode(event, "req-9")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return msg
}

func newProjector(repo *memoryEventRepo) *Projector {
	p := NewProjector(repo, logger.Discard())
	p.now = func() time.Time { return time.Date(2026, 6, 1, 9, 0, 5, 0, time.UTC) }
	return p
}

func TestProjector_RecordsEvent(t *testing.T) {
	repo := &memoryEventRepo{events: map[string]*model.BookingEvent{}}
	p := newProjector(repo)

	if err := p.Handle(context.Background(), createdMessage(t)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	stored := repo.events["evt-1"]
	if stored == nil {
		t.Fatal("event not stored")
	}
	if stored.BookingID != 11 || stored.Type != model.BookingEventCreated {
		t.Errorf("stored = %+v", stored)
	}
	if stored.ReceivedAt.IsZero() {
		t.Error("received_at not set")
	}
}

func TestProjector_DuplicateIsAcknowledged(t *testing.T) {
	repo := &memoryEventRepo{events: map[string]*model.BookingEvent{}}
	p := newProjector(repo)
	msg := createdMessage(t)

	if err := p.Handle(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	if err := p.Handle(context.Background(), msg); err != nil {
		t.Errorf("redelivery error = %v, want nil", err)
	}
	if len(repo.events) != 1 {
		t.Errorf("%d events stored", len(repo.events))
	}
}

func TestProjector_ErrorClassification(t *testing.T) {
	repo := &memoryEventRepo{events: map[string]*model.BookingEvent{}, err: errors.New("connection reset")}
	p := newProjector(repo)

	err := p.Handle(context.Background(), createdMessage(t))
	if kafka.ClassifyError(err) != kafka.ErrorTypeTransient {
		t.Errorf("storage failure classified as %v, want transient", kafka.ClassifyError(err))
	}

	err = p.Handle(context.Background(), kafka.Message{Value: []byte("not json")})
	if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
		t.Errorf("bad payload classified as %v, want permanent", kafka.ClassifyError(err))
	}
}

func TestHistory_ForBooking(t *testing.T) {
	repo := &memoryEventRepo{events: map[string]*model.BookingEvent{}}
	p := NewProjector(repo, logger.Discard())
	if err := p.Handle(context.Background(), createdMessage(t)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	h := NewHistory(repo, logger.Discard())
	got, err := h.ForBooking(context.Background(), 11)
	if err != nil {
		t.Fatalf("ForBooking() error = %v", err)
	}
	if len(got) != 1 || got[0].EventID != "evt-1" {
		t.Errorf("ForBooking() = %+v", got)
	}

	if _, err := h.ForBooking(context.Background(), 0); err == nil {
		t.Error("expected error for non-positive id")
	}

	if _, err := NewHistory(&failingFindRepo{}, logger.Discard()).ForBooking(context.Background(), 11); err == nil {
		t.Error("expected error when the store fails")
	}
}

type failingFindRepo struct{ memoryEventRepo }

func (failingFindRepo) FindByBooking(context.Context, int64) ([]*model.BookingEvent, error) {
	return nil, errors.New("down")
}
