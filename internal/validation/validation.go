// Package validation checks request bodies before they reach the services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags and returns a ValidationFailed
// error listing one message per failing field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.ValidationFailed(config.ErrValidationFailed, err.Error())
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldMessage(fe))
	}
	return apperr.ValidationFailed(config.ErrValidationFailed, details...)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Post checks title and content bounds after trimming. Lengths are counted in runes.
func Post(in model.PostInput, bounds config.ContentConfig) error {
	var details []string

	title := strings.TrimSpace(in.Title)
	if err := validate.Var(title, fmt.Sprintf("min=%d,max=%d", bounds.TitleMinLength, bounds.TitleMaxLength)); err != nil {
		details = append(details, fmt.Sprintf("Title must be between %d and %d characters", bounds.TitleMinLength, bounds.TitleMaxLength))
	}

	content := strings.TrimSpace(in.Content)
	if err := validate.Var(content, fmt.Sprintf("min=%d,max=%d", bounds.ContentMinLength, bounds.ContentMaxLength)); err != nil {
		details = append(details, fmt.Sprintf("Content must be between %d and %d characters", bounds.ContentMinLength, bounds.ContentMaxLength))
	}

	if len(details) > 0 {
		return apperr.ValidationFailed(config.ErrValidationFailed, details...)
	}
	return nil
}
