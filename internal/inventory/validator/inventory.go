package validator

import (
	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/validation"
)

type InventoryValidator struct {
	v *validation.Validator
}

func NewInventoryValidator(log *logger.Logger) *InventoryValidator {
	return &InventoryValidator{v: validation.New(log)}
}

func (iv *InventoryValidator) ValidateRoom(room *model.Room) error {
	if err := iv.v.Struct(room); err != nil {
		return err
	}
	if room.Capacity != nil && *room.Capacity < room.Beds {
		return validation.Field("capacity", "capacity cannot be lower than the number of beds")
	}
	return nil
}

func (iv *InventoryValidator) ValidateCabin(cabin *model.Cabin) error {
	if err := iv.v.Struct(cabin); err != nil {
		return err
	}
	if cabin.Floors > cabin.Rooms {
		return validation.Field("floors", "floors cannot exceed rooms")
	}
	return nil
}
