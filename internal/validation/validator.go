// Package validation checks decoded request payloads with go-playground/validator
// and reports the first failure as an API error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/vidtube/backend/internal/apierror"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance. Field names in errors are
// taken from the json or form tag. The notblank rule rejects whitespace-only
// values on fields that are not trimmed.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
		if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(err)
		}
	})
	return validate
}

// Struct trims every string field of s, which must be a pointer to a struct,
// then validates it. Failed "required" rules become MissingField errors; other
// rules become InvalidArgument errors.
func Struct(s any) error {
	TrimStrings(s)

	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierror.Wrap(apierror.KindInvalidArgument, "invalid request", err)
	}
	return translate(fieldErrs[0])
}

// TrimStrings trims surrounding whitespace from the exported string fields of
// the struct s points to. Fields tagged `trim:"-"` are left untouched.
func TrimStrings(s any) {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Tag.Get("trim") == "-" {
			continue
		}
		field := v.Field(i)
		if field.Kind() == reflect.String && field.CanSet() {
			field.SetString(strings.TrimSpace(field.String()))
		}
	}
}

func translate(fe validator.FieldError) error {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_without", "notblank":
		return apierror.MissingField(field)
	case "email":
		return apierror.New(apierror.KindInvalidArgument, field+" must be a valid email address")
	case "min":
		return apierror.New(apierror.KindInvalidArgument, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return apierror.New(apierror.KindInvalidArgument, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "alphanum":
		return apierror.New(apierror.KindInvalidArgument, field+" must only contain letters and digits")
	default:
		return apierror.New(apierror.KindInvalidArgument, "invalid "+field)
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}
