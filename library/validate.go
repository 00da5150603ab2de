package library

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("status", validateStatus); err != nil {
		panic(fmt.Sprintf("register status validation: %v", err))
	}
}

func validateStatus(fl validator.FieldLevel) bool {
	s := Status(fl.Field().String())
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// FieldError is one rejected field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned before the store is touched when a book is
// missing required fields or carries out-of-range values.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "invalid book: " + strings.Join(msgs, "; ")
}

// ValidateBook checks the caller-side rules for a book. Title and author are
// compared after trimming surrounding whitespace.
func ValidateBook(b *Book) error {
	trimmed := *b
	trimmed.Title = strings.TrimSpace(b.Title)
	trimmed.Author = strings.TrimSpace(b.Author)

	err := validate.Struct(&trimmed)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		field := fe.Field()
		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "status":
			message = fmt.Sprintf("%s must be one of %q, %q or %q", field, StatusToRead, StatusReading, StatusCompleted)
		case "gte", "lte":
			message = fmt.Sprintf("%s must be between 0 and 9999", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		out.Fields = append(out.Fields, FieldError{
			Field:   strings.ToLower(field[:1]) + field[1:],
			Message: message,
		})
	}
	return out
}
