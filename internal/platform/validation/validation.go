// Package validation checks decoded request bodies with go-playground/validator
// and converts failures into huma error details.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"

	"github.com/janisto/devconnector-api/internal/platform/timeutil"
)

// Message is returned as the problem detail for any validation failure.
const Message = "validation failed"

// presenceRules are the rules a field's `message` tag speaks for.
var presenceRules = map[string]bool{"required": true, "min": true}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := timeutil.ParseDate(s)
		return err == nil
	})
	return v
}

// Details validates v and returns one huma.ErrorDetail per failed rule. A field's
// `message` tag replaces the default text for its presence rules (required, min). Location is
// "body.<json name>".
func Details(v any) ([]*huma.ErrorDetail, error) {
	err := validate.Struct(v)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	details := make([]*huma.ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, &huma.ErrorDetail{
			Message:  message(t, fe),
			Location: "body." + fe.Field(),
			Value:    fe.Value(),
		})
	}
	return details, nil
}

// Check validates v and returns a 400 problem listing every failed field, or nil.
func Check(v any) error {
	details, err := Details(v)
	if err != nil {
		return err
	}
	if len(details) == 0 {
		return nil
	}
	errs := make([]error, len(details))
	for i, d := range details {
		errs[i] = d
	}
	return huma.Error400BadRequest(Message, errs...)
}

func message(t reflect.Type, fe validator.FieldError) string {
	if presenceRules[fe.Tag()] && t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if m := f.Tag.Get("message"); m != "" {
				return m
			}
		}
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "date":
		return fmt.Sprintf("%s must be a valid date", fe.Field())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
