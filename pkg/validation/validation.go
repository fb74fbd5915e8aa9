// Package validation runs struct validation with the rules shared by the HTTP
// layer and the storefront flows.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)

var validate = newValidator()

// Messages lets a form override the default text per field or per field and rule.
// Keys are "field.rule" or "field", using JSON field names.
type Messages interface {
	ValidationMessages() map[string]string
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	return v
}

// IsPhone reports whether value only uses the phone number character set.
func IsPhone(value string) bool {
	return phonePattern.MatchString(value)
}

// Struct validates dest. Failures come back as a VALIDATION error whose details
// map each field to one message.
func Struct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}

	var overrides map[string]string
	if m, ok := dest.(Messages); ok {
		overrides = m.ValidationMessages()
	}
	details := map[string]string{}
	for _, fieldErr := range errs {
		if _, seen := details[fieldErr.Field()]; seen {
			continue
		}
		details[fieldErr.Field()] = message(fieldErr, overrides)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

func message(fe validator.FieldError, overrides map[string]string) string {
	if msg, ok := overrides[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := overrides[fe.Field()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "phone":
		return "must be a valid phone number"
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return "is invalid"
}
