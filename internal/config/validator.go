package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator() //nolint:gochecknoglobals

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0] // nolint: mnd
		if len(name) == 0 {
			return fld.Name
		}

		return name
	})

	return v
}

// ValidateStruct validates s against its validate tags. Field names are reported with their
// configuration keys.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, describe(fe))
	}

	return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(msgs, ", "))
}

func describe(fe validator.FieldError) string {
	// drop the root struct name
	_, field, _ := strings.Cut(fe.Namespace(), ".")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' is a required field", field)
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s]", field, fe.Param())
	case "min":
		return fmt.Sprintf("'%s' must be %s or greater", field, fe.Param())
	case "max":
		return fmt.Sprintf("'%s' must be %s or less", field, fe.Param())
	default:
		return fmt.Sprintf("'%s' failed on the '%s' validation", field, fe.Tag())
	}
}
