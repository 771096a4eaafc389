package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/yourname/sleepwell/internal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("password", validPassword)
	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		_, err := ParseTimestamp(fl.Field().String())
		return err == nil
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if n, ok := field.Interface().(Nullable[string]); ok && n.Value != nil {
			return *n.Value
		}
		return ""
	}, Nullable[string]{})
	return v
}

// Validate checks a request struct against its validate tags.
func Validate(req interface{}) error {
	return validate.Struct(req)
}

// validPassword requires 8 to 100 characters with an upper case letter,
// a lower case letter and a digit.
func validPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if n := utf8.RuneCountInString(s); n < 8 || n > 100 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// ParseTimestamp accepts RFC 3339 with an offset, or a local-looking
// "YYYY-MM-DDTHH:MM[:SS[.fff]]" which is read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// Nullable tells an absent JSON field apart from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// FieldErrors turns validator output into client-facing field messages.
func FieldErrors(err error) []internal.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]internal.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, internal.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email address"
	case "password":
		return "Password must be 8-100 characters and contain at least one uppercase letter, one lowercase letter, and one number"
	case "datetime":
		return "Date must be in YYYY-MM-DD format"
	case "timestamp":
		return fe.Field() + " must be an ISO 8601 timestamp"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("%s must contain at most %s items", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

// invalidField builds the same 400 a failed struct validation produces.
func invalidField(field, msg string) *internal.AppError {
	e := internal.BadRequest("Validation failed")
	e.Details = []internal.FieldError{{Field: field, Message: msg}}
	return e
}

// roundHalfUp rounds to the given number of decimals, halves toward +Inf.
func roundHalfUp(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Floor(x*p+0.5) / p
}
