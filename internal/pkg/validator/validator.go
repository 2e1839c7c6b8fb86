package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"cv-builder/internal/catalog"
)

// DateLayout is the wire format of every calendar date in request bodies.
const DateLayout = "2006-01-02"

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator wraps go-playground/validator with the registry and date rules.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Field errors are reported with their JSON names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		registerCustomValidations(validate)
	})

	return &Validator{v: validate}
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}

func (v *Validator) ValidateVar(field interface{}, tag string) error {
	return v.v.Var(field, tag)
}

// Messages flattens a validation error into "<field> <message>" lines, in
// struct field order. Non-validation errors become a single line.
func (v *Validator) Messages(err error) []string {
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, fieldPath(e)+" "+formatValidationError(e))
	}
	return out
}

// fieldPath drops the root struct name from the namespace so nested fields
// read as "personal.email" rather than "updatePersonalRequest.personal.email".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isNumeric(e.Kind()) {
			return "must be at least " + e.Param()
		}
		return "must be at least " + e.Param() + " characters"
	case "max":
		if isNumeric(e.Kind()) {
			return "must be at most " + e.Param()
		}
		return "must be at most " + e.Param() + " characters"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "len":
		return "must be exactly " + e.Param() + " characters"
	case "oneof":
		return "must be one of: " + e.Param()
	case "url", "http_url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "date_after":
		return "must be after " + e.Param()
	case "unique":
		return "must not contain duplicates"
	case "template_id":
		return "must be a known template"
	case "color_scheme_id":
		return "must be a known color scheme"
	case "skill_category":
		return "must be a known skill category"
	default:
		return "is invalid"
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("template_id", func(fl validator.FieldLevel) bool {
		return catalog.TemplateExists(fl.Field().String())
	})

	_ = v.RegisterValidation("color_scheme_id", func(fl validator.FieldLevel) bool {
		return catalog.ColorSchemeExists(fl.Field().String())
	})

	_ = v.RegisterValidation("skill_category", func(fl validator.FieldLevel) bool {
		return catalog.SkillCategoryExists(fl.Field().String())
	})

	// date_after=start_date: the field must be strictly later than the sibling
	// whose JSON name is the parameter. Entries flagged is_current drop their
	// end date, so it is not compared.
	// Missing or unparseable values pass here; the datetime tag reports those.
	_ = v.RegisterValidation("date_after", func(fl validator.FieldLevel) bool {
		end, ok := parseDate(fl.Field())
		if !ok {
			return true
		}
		parent := reflect.Indirect(fl.Parent())
		if parent.Kind() != reflect.Struct {
			return true
		}
		if current, found := fieldByJSONName(parent, "is_current"); found && current.Kind() == reflect.Bool && current.Bool() {
			return true
		}
		sibling, found := fieldByJSONName(parent, fl.Param())
		if !found {
			return true
		}
		start, ok := parseDate(sibling)
		if !ok {
			return true
		}
		return end.After(start)
	})
}

func fieldByJSONName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if tag == name || (tag == "" && t.Field(i).Name == name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func parseDate(v reflect.Value) (time.Time, bool) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return time.Time{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.String {
		return time.Time{}, false
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func Validate(i interface{}) error {
	return New().Validate(i)
}

func ValidateVar(field interface{}, tag string) error {
	return New().ValidateVar(field, tag)
}

func Messages(err error) []string {
	return New().Messages(err)
}

// IsValidationError reports whether err carries field validation failures.
func IsValidationError(err error) bool {
	var errs validator.ValidationErrors
	return errors.As(err, &errs)
}
