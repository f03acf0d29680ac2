// Package validation checks request bodies at the HTTP boundary and turns
// validator/v10 failures into client-facing ValidationErrors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/arzan03/TaskManager/internal/apperror"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	once     sync.Once
	validate *validator.Validate

	mobilePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	phoneNoise    = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report field names as they appear in the JSON body.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("mobile", isMobile)
		_ = v.RegisterValidation("nopassword", notContainingPassword)
		validate = v
	})
	return validate
}

// IsMobile reports whether s looks like a mobile phone number.
func IsMobile(s string) bool {
	return mobilePattern.MatchString(phoneNoise.Replace(s))
}

func isMobile(fl validator.FieldLevel) bool {
	return IsMobile(fl.Field().String())
}

func notContainingPassword(fl validator.FieldLevel) bool {
	return !strings.Contains(strings.ToLower(fl.Field().String()), "password")
}

// Struct validates s and returns nil or an *apperror.AppError describing
// the first violated rule.
func Struct(s any) error {
	if err := engine().Struct(s); err != nil {
		return MapValidationError(err)
	}
	return nil
}

// Var validates a single value against tag, reporting failures under field.
func Var(field string, value any, tag string) error {
	err := engine().Var(value, tag)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return messageFor(field, errs[0])
	}
	return apperror.InvalidField(formatFieldName(field))
}

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return cases.Title(language.English).String(s)
}

// MapValidationError converts validator errors to a ValidationError.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return messageFor(errs[0].Field(), errs[0])
	}
	return apperror.Validation("Invalid input")
}

func messageFor(field string, e validator.FieldError) error {
	name := formatFieldName(field)

	switch e.Tag() {
	case "required":
		return apperror.RequiredField(name)
	case "min":
		if e.Kind() == reflect.String {
			return apperror.Validation(fmt.Sprintf("%s is shorter than the minimum allowed length (%s)", name, e.Param()))
		}
		return apperror.Validation(fmt.Sprintf("%s must be at least %s", name, e.Param()))
	case "max":
		return apperror.Validation(fmt.Sprintf("%s must be at most %s", name, e.Param()))
	case "oneof":
		return apperror.Validation(fmt.Sprintf("%v is not supported", e.Value()))
	case "nopassword":
		return apperror.Validation(fmt.Sprintf(`%s can not contain "password"`, name))
	default:
		return apperror.InvalidField(name)
	}
}
