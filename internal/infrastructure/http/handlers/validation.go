package handlers

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nutriplan/core/internal/domain/shopping"
	"github.com/nutriplan/core/pkg/errors"
)

// Validator checks decoded request bodies
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator reporting JSON field names
func NewValidator() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("shopping_category", validateCategory)

	return &Validator{validate: validate}
}

// Struct validates s and returns a VALIDATION_FAILED AppError listing every
// offending field
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return errors.NewValidationError(err.Error()).WithCause(err)
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[fieldPath(e)] = message(e)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	details := make([]string, 0, len(keys))
	for _, k := range keys {
		details = append(details, fields[k])
	}
	return errors.NewValidationError(strings.Join(details, "; ")).
		WithMetadata("fields", fields).
		WithCause(err)
}

// fieldPath drops the root struct name from the namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(e validator.FieldError) string {
	field := fieldPath(e)
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s elements", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be %s %s", field, map[string]string{"gt": ">", "gte": ">="}[e.Tag()], e.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(e.Param(), " ", ", "))
	case "shopping_category":
		return fmt.Sprintf("%s is not a known category", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func validateCategory(fl validator.FieldLevel) bool {
	_, err := shopping.ParseCategory(fl.Field().String())
	return err == nil
}
