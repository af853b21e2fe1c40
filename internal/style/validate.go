package style

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrSchemaViolation indicates a model response that does not satisfy the result schema.
var ErrSchemaViolation = errors.New("response violates analysis schema")

// hexPattern matches a #RRGGBB color code.
var hexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("rrggbb", func(fl validator.FieldLevel) bool {
		return hexPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		_, err := ParseGender(fl.Field().String())
		return err == nil
	})

	return v
}

// ValidationError is a single rejected form field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every rejected field of a form.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Form is the user-supplied part of a submission.
type Form struct {
	Occasion  string `json:"occasion" validate:"required,min=3"`
	Genre     string `json:"genre"    validate:"required,min=3"`
	Gender    string `json:"gender"   validate:"required,gender"`
	PhotoSize int    `json:"image"    validate:"required,max=10000000"`
}

// formMessages maps field and failed tag to the message shown next to the field.
var formMessages = map[string]map[string]string{
	"occasion": {
		"required": "Please enter an occasion.",
		"min":      "Occasion must be at least 3 characters.",
	},
	"genre": {
		"required": "Please enter a genre.",
		"min":      "Genre must be at least 3 characters.",
	},
	"gender": {
		"required": "Please select a gender.",
		"gender":   "Gender must be Male, Female or Neutral.",
	},
	"image": {
		"required": "An image of your outfit is required.",
		"max":      "Max file size is 10MB.",
	},
}

// Validate checks the form and returns ValidationErrors when any field is rejected.
func (f *Form) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	result := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := formMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %s validation", fe.Tag())
		}
		result = append(result, ValidationError{Field: fe.Field(), Message: msg})
	}

	return result
}

// Validate checks the result against the analysis schema bounds.
func (r *AnalysisResult) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s failed %s=%s", path, fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s failed %s", path, fe.Tag()))
		}
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(problems, "; "))
}

// Color parses the suggestion's hex code.
func (c ColorSuggestion) Color() (colorful.Color, error) {
	return colorful.Hex(c.Hex)
}
