package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// NewValidator returns a validator that reports fields by their json name,
// understands decimal.Decimal amounts and knows the "slug" tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}

		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})

	return v
}

func IsSlug(s string) bool {
	return slugRegex.MatchString(s)
}

func FormatValidationError(err error) map[string]string {
	res := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		res["body"] = err.Error()
		return res
	}

	for _, fe := range validationErrors {
		field := fieldPath(fe)

		switch fe.Tag() {
		case "required":
			res[field] = fmt.Sprintf("%s is required", field)
		case "min":
			if fe.Kind() == reflect.Slice {
				res[field] = fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
			} else {
				res[field] = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
			}
		case "max":
			res[field] = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		case "gt":
			res[field] = fmt.Sprintf("%s must be greater than %s", field, fe.Param())
		case "gte":
			res[field] = fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
		case "lte":
			res[field] = fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
		case "url":
			res[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "email":
			res[field] = fmt.Sprintf("%s must be a valid email", field)
		case "uuid":
			res[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "oneof":
			res[field] = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
		case "slug":
			res[field] = fmt.Sprintf("%s must contain only lowercase letters, digits and hyphens", field)
		default:
			res[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return res
}

// fieldPath drops the root struct name from the namespace, so nested
// errors read like "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}

	return strings.ToLower(fe.Field())
}
