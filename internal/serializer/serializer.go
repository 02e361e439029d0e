// Package serializer turns stored records into API representations and
// validates incoming payloads before anything is written.
//
// Validation messages follow the wording clients of this API already
// expect ("This field is required.", per-field lists, non_field_errors),
// so error bodies look the same whichever rule fired.
package serializer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/kittygram/internal/model"
)

const (
	MsgRequired = "This field is required."
	MsgBlank    = "This field may not be blank."
	MsgNull     = "This field may not be null."

	MsgBirthYear          = "Проверьте год рождения!"
	MsgNameEqualsColor    = "Имя не может совпадать с цветом!"
	MsgNameOwnerNotUnique = "The fields name, owner must make a unique set."
	MsgUsernameTaken      = "A user with that username already exists."
	MsgInvalidUsername    = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// validate is shared by every serializer; *validator.Validate caches
// struct metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names, not Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		return model.IsValidColor(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// message translates one validator failure into a client-facing message.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgBlank
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "color":
		return fmt.Sprintf(`"%v" is not a valid choice.`, fe.Value())
	case "username":
		return MsgInvalidUsername
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

// fieldErrors accumulates messages per field.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// check runs tag against value and records any failures under field.
func (fe fieldErrors) check(field string, value any, tag string) {
	err := validate.Var(value, tag)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, v := range verrs {
			fe.add(field, message(v))
		}
		return
	}
	fe.add(field, err.Error())
}

// checkStruct validates s by its `validate` tags.
func (fe fieldErrors) checkStruct(s any) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, v := range verrs {
			fe.add(v.Field(), message(v))
		}
		return
	}
	fe.add("body", err.Error())
}

// Optional distinguishes a JSON key that was never sent from one sent as
// null or with a value. The zero value means "absent".
type Optional[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: v}
}

// UnmarshalJSON only runs when the key appears in the payload.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// MarshalJSON writes null unless a value is present.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
