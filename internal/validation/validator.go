// Package validation wraps go-playground/validator with the service's custom
// tags and turns failures into validation-kind errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"merchantportal/internal/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json field names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return pincodeRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return ifscRegex.MatchString(strings.ToUpper(fl.Field().String()))
	})

	return v
}

// Struct validates v and returns a validation-kind error naming the first
// failing field.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Validation("invalid request")
	}
	return apperrors.Validation(message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	case "pincode":
		return fmt.Sprintf("%s must be a 6 digit pincode", field)
	case "ifsc":
		return fmt.Sprintf("%s must be a valid IFSC code", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
