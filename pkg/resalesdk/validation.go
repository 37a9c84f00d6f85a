package resalesdk

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxComparedDistricts bounds how many districts a comparison may include.
const MaxComparedDistricts = 5

// emailPattern is deliberately loose; the server performs the real check.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so field keys line up with server field errors.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01", fl.Field().String())
		return err == nil
	})

	return v
}

// validateStruct runs struct tag validation and renders one message per
// field. Returns nil when s is valid.
func validateStruct(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "required_without":
		return "Provide a new username or email."
	case "simpleemail":
		return "Please enter a valid email address."
	case "yearmonth":
		return "Use the YYYY-MM format."
	case "eqfield":
		return "Passwords do not match."
	case "gtefield":
		return "End must not be before start."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if fe.Kind() == reflect.Slice {
			return "Select at least one district."
		}
		return fmt.Sprintf("Password must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("You can compare at most %s districts.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	default:
		return fe.Error()
	}
}

// ============================================================================
// Validate methods
// ============================================================================

// Validate checks the login form. Returns nil when valid.
func (r LoginRequest) Validate() map[string]string { return validateStruct(r) }

// Validate checks the signup form: every field present, a plausible
// email, a password of at least 8 characters and a matching confirmation.
func (r SignupRequest) Validate() map[string]string { return validateStruct(r) }

func (r UpdateProfileRequest) Validate() map[string]string { return validateStruct(r) }

func (r ForgotPasswordRequest) Validate() map[string]string { return validateStruct(r) }

func (r ResetPasswordRequest) Validate() map[string]string { return validateStruct(r) }

func (q AnalysisQuery) Validate() map[string]string { return validateStruct(q) }

func (q TrendsQuery) Validate() map[string]string { return validateStruct(q) }

func (q ListingsQuery) Validate() map[string]string { return validateStruct(q) }

// Validate checks the comparison window. End may equal Start.
func (q ComparisonQuery) Validate() map[string]string {
	errs := validateStruct(q)
	if errs == nil && q.End < q.Start {
		// YYYY-MM compares correctly as a string
		errs = map[string]string{"end": "End date cannot be before start date."}
	}
	return errs
}

func invalid(errs map[string]string) error {
	if errs == nil {
		return nil
	}
	return &ValidationError{Fields: errs}
}
