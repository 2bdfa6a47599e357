package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// fieldError is a validation failure for one form field.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validateStruct returns one fieldError per failed constraint on s.
func validateStruct(s any) []fieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []fieldError{{Message: err.Error()}}
	}

	errs := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return errs
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	if field == "selected_books" {
		return "Please select at least one book before submitting."
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
