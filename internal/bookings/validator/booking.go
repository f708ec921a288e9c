package validator

import (
	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/validation"
)

type BookingValidator struct {
	v *validation.Validator
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{v: validation.New(log)}
}

// ValidateRequest checks the payload fields. The date range is checked by
// the ledger so that an inverted range reports INVALID_RANGE.
func (bv *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	return bv.v.Struct(req)
}

func (bv *BookingValidator) ValidateStatusUpdate(update *model.BookingStatusUpdate) error {
	return bv.v.Struct(update)
}

func (bv *BookingValidator) ValidateSearch(req *model.SearchRequest) error {
	if err := bv.v.Struct(req); err != nil {
		return err
	}
	if req.TotalGuests() < 1 {
		return validation.Field("guests", "at least one guest is required")
	}
	return nil
}

// ValidateCapacity rejects parties larger than the object holds.
func (bv *BookingValidator) ValidateCapacity(guests, capacity int) error {
	if guests > capacity {
		return validation.Field("guests", "guest count exceeds the capacity of the selected object")
	}
	return nil
}
