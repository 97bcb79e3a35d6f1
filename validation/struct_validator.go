package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding/htmlindex"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error aggregates the field errors of one Validate call.
type Error struct {
	Fields []FieldError `json:"fields"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Field + ": " + f.Message
	}
	return "validation: " + strings.Join(messages, "; ")
}

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report the config key rather than the Go field name.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
		_ = validate.RegisterValidation("charset", func(fl validator.FieldLevel) bool {
			return IsCharset(fl.Field().String())
		})
	})
	return validate
}

// IsCharset reports whether name is a character encoding known to x/text.
func IsCharset(name string) bool {
	if name == "" {
		return false
	}
	_, err := htmlindex.Get(name)
	return err == nil
}

// Validate validates a struct using its `validate` tags. It returns nil or
// an *Error listing every invalid field.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(validationErrors))}
	for _, e := range validationErrors {
		out.Fields = append(out.Fields, FieldError{
			Field:   e.Field(),
			Message: formatValidationError(e),
		})
	}
	return out
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "hostname_rfc1123", "hostname":
		return "must be a valid hostname"
	case "charset":
		return "must be a known character encoding"
	default:
		return "is invalid"
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
