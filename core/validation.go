package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	goerrors "github.com/goliatone/go-errors"
)

// StructValidator checks request DTOs against their `validate` tags before
// they are sent to the gateway.
type StructValidator struct {
	v *validator.Validate
}

func NewStructValidator() *StructValidator {
	return &StructValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (s *StructValidator) ValidateRequest(req any) error {
	if s == nil || s.v == nil || req == nil {
		return nil
	}
	if err := s.v.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]goerrors.FieldError, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, goerrors.FieldError{
					Field:   jsonFieldName(fe),
					Message: fieldMessage(fe),
				})
			}
			return BadInputError("hashgate: request validation failed", fields...)
		}
		return BadInputError(fmt.Sprintf("hashgate: request validation failed: %v", err))
	}
	return nil
}

func jsonFieldName(fe validator.FieldError) string {
	field := fe.Field()
	if field == "" {
		return ""
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func fieldMessage(fe validator.FieldError) string {
	field := jsonFieldName(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "required_without":
		return fmt.Sprintf("%s is required when %s is not set", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
