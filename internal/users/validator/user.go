package validator

import (
	"strings"
	"unicode"

	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/validation"
)

type UserValidator struct {
	v *validation.Validator
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	return &UserValidator{v: validation.New(log)}
}

func (uv *UserValidator) ValidateRegister(req *model.RegisterRequest) error {
	if err := uv.v.Struct(req); err != nil {
		return err
	}
	return validatePassword(req.Password)
}

func (uv *UserValidator) ValidateLogin(req *model.LoginRequest) error {
	return uv.v.Struct(req)
}

func (uv *UserValidator) ValidateUpdate(update *model.UserUpdate) error {
	if update.FirstName == nil && update.LastName == nil && update.Password == nil && update.Role == nil {
		return validation.Field("body", "at least one field must be provided")
	}
	if err := uv.v.Struct(update); err != nil {
		return err
	}
	if update.Password != nil {
		return validatePassword(*update.Password)
	}
	return nil
}

// validatePassword requires at least one letter and one digit.
func validatePassword(password string) error {
	if strings.TrimSpace(password) != password {
		return validation.Field("password", "password must not start or end with whitespace")
	}
	hasLetter := strings.IndexFunc(password, unicode.IsLetter) >= 0
	hasDigit := strings.IndexFunc(password, unicode.IsDigit) >= 0
	if !hasLetter || !hasDigit {
		return validation.Field("password", "password must contain a letter and a digit")
	}
	return nil
}
