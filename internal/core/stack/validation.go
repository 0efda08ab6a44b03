package stack

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Validation
// =============================================================================

// imageRefPattern matches "[registry[:port]/]repo:tag". The tag is mandatory.
var imageRefPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._/:-]*:[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML names so messages match liquid.yaml.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("image_ref", func(fl validator.FieldLevel) bool {
		return imageRefPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks that cfg is complete enough to launch the stack.
// It returns a *ValidationError listing every failing field, or nil.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		// Namespace is "Config.stack.model_image"; drop the type name.
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		verr.Problems = append(verr.Problems, FieldProblem{
			Field: field,
			Rule:  fe.Tag(),
			Value: fe.Value(),
		})
	}
	return verr
}

// IsImageRef reports whether s looks like "repo:tag".
func IsImageRef(s string) bool {
	return imageRefPattern.MatchString(s)
}
