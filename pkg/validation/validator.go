// Package validation provides struct and snapshot validation built on
// go-playground/validator with task-graph specific rules.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	socketPathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	uuid4Pattern      = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	semverPattern     = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(-[\w\.-]+)?(\+[\w\.-]+)?$`)
)

// Validate is the shared validator instance with the custom rules registered.
var Validate *validator.Validate

func init() {
	Validate = validator.New()

	Validate.RegisterValidation("node_name", validateNodeName)
	Validate.RegisterValidation("spec_identifier", validateIdentifier)
	Validate.RegisterValidation("socket_path", validateSocketPath)
	Validate.RegisterValidation("uuid4", validateUUID4)
	Validate.RegisterValidation("semver", validateSemVer)

	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidationError describes a single failed field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
}

// ValidationErrors aggregates failures from one Struct call.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Struct validates s against its validate tags and returns ValidationErrors
// on failure.
func Struct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	return formatErrors(err)
}

func formatErrors(err error) ValidationErrors {
	var out ValidationErrors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Value:   fe.Value(),
				Message: messageFor(fe),
			})
		}
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("minimum value/length is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum value/length is %s", fe.Param())
	case "node_name":
		return "must be a valid node name (letters, digits, underscore; not starting with a digit)"
	case "spec_identifier":
		return "must be a valid spec identifier (letters, digits, underscore; not starting with a digit)"
	case "socket_path":
		return "must be a dotted socket path of valid identifiers"
	case "uuid4":
		return "must be a valid UUID v4"
	case "semver":
		return "must be a valid semantic version"
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}

func validateNodeName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return identifierPattern.MatchString(name) && len(name) <= 100
}

func validateIdentifier(fl validator.FieldLevel) bool {
	return identifierPattern.MatchString(fl.Field().String())
}

func validateSocketPath(fl validator.FieldLevel) bool {
	return socketPathPattern.MatchString(fl.Field().String())
}

func validateUUID4(fl validator.FieldLevel) bool {
	return uuid4Pattern.MatchString(fl.Field().String())
}

func validateSemVer(fl validator.FieldLevel) bool {
	return semverPattern.MatchString(fl.Field().String())
}
