// Package validate runs struct-tag validation (go-playground/validator tags)
// and reports failures as a map of JSON field path to a readable message.
//
//	type Input struct {
//	    Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
//	    Email    string `json:"email"    validate:"required,email"`
//	    Lines    []Line `json:"lines"    validate:"required,min=1,dive"`
//	}
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return instance
}

// Struct validates v. The returned map is empty when v is valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)

	err := engine().Struct(v)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["_"] = err.Error()
		return errs
	}

	for _, fe := range fieldErrs {
		key := fieldPath(fe)
		if _, seen := errs[key]; !seen {
			errs[key] = message(fe)
		}
	}
	return errs
}

// HasErrors reports whether errs contains at least one failure.
func HasErrors(errs map[string]string) bool {
	return len(errs) > 0
}

// fieldPath drops the root struct name: "Input.lines[0].quantity" -> "lines[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	p := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "alphanum":
		return fmt.Sprintf("The %s may only contain letters and numbers.", field)
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", field, strings.ReplaceAll(p, " ", ", "))
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("The %s must be at least %s characters.", field, p)
		case reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf("The %s must contain at least %s items.", field, p)
		}
		return fmt.Sprintf("The %s must be at least %s.", field, p)
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, p)
		case reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf("The %s may not contain more than %s items.", field, p)
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, p)
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, p)
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", field, p)
	case "lt":
		return fmt.Sprintf("The %s must be less than %s.", field, p)
	case "lte":
		return fmt.Sprintf("The %s may not be greater than %s.", field, p)
	case "gtefield":
		return fmt.Sprintf("The %s must be at least the %s.", field, strings.ToLower(p))
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}
