package audit

import (
	"context"

	"resort/internal/audit/repository"
	apperrors "resort/pkg/errors"
	"resort/pkg/logger"
	"resort/pkg/model"
)

// History reads the recorded lifecycle of a booking. Events of deleted
// bookings stay readable.
type History struct {
	repo repository.EventRepository
	log  *logger.Logger
}

func NewHistory(repo repository.EventRepository, log *logger.Logger) *History {
	return &History{repo: repo, log: log}
}

func (h *History) ForBooking(ctx context.Context, bookingID int64) ([]*model.BookingEvent, error) {
	if bookingID <= 0 {
		return nil, apperrors.InvalidInput("Booking id must be positive")
	}

	events, err := h.repo.FindByBooking(ctx, bookingID)
	if err != nil {
		h.log.FromContext(ctx).Error("Failed to load booking history", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking history", err)
	}
	return events, nil
}
