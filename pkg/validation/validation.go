package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "resort/pkg/errors"
	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// AppError converts validation failures into a 422 listing every field.
func (v ValidationErrors) AppError(message string) *apperrors.AppError {
	return apperrors.Validation(message, map[string]any{"errors": []ValidationError(v)})
}

type Validator struct {
	validate *validator.Validate
}

var customTags = map[string]validator.Func{
	"object_type": func(fl validator.FieldLevel) bool {
		return model.ObjectType(fl.Field().String()).Valid()
	},
	"booking_status": func(fl validator.FieldLevel) bool {
		return model.BookingStatus(fl.Field().String()).Valid()
	},
	"role": func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	},
	"contact_phone": func(fl validator.FieldLevel) bool {
		phone := fl.Field().String()
		return phone != "" && sanitizer.NormalizePhone(phone) == phone
	},
}

// New builds a validator that reports fields by their JSON names.
func New(log *logger.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	for tag, fn := range customTags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	return &Validator{validate: v}
}

// Struct returns ValidationErrors for field failures and the raw error otherwise.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return translate(validationErrs)
	}
	return err
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))

	for _, err := range errs {
		field := err.Field()
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", field)
		case "object_type":
			message = fmt.Sprintf("%s must be one of: room cabin", field)
		case "booking_status":
			message = fmt.Sprintf("%s must be one of: pending confirmed cancelled", field)
		case "role":
			message = fmt.Sprintf("%s must be one of: admin client", field)
		case "contact_phone":
			message = fmt.Sprintf("%s must be a valid phone number in E.164 format (e.g., +79161234567)", field)
		}

		out = append(out, ValidationError{Field: fieldPath(err), Message: message})
	}

	return out
}

// fieldPath drops the struct name from the namespace, e.g. "guests[0].adults".
func fieldPath(err validator.FieldError) string {
	if _, path, ok := strings.Cut(err.Namespace(), "."); ok {
		return path
	}
	return err.Field()
}

func Field(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}
