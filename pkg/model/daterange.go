package model

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("start date must be before end date")

// DateRange is the half-open interval [Start, End).
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	return r, r.Validate()
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() || !r.Start.Before(r.End) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps uses half-open semantics: ranges that only touch do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

func (r DateRange) UTC() DateRange {
	return DateRange{Start: r.Start.UTC(), End: r.End.UTC()}
}
