package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

func Validate[T any](value T) (T, error) {
	if err := validate.Struct(value); err != nil {
		return value, validationErrorToString(err)
	}

	return value, nil
}

// validationErrorToString flattens validator failures into one message.
func validationErrorToString(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			messages = append(messages, fmt.Sprintf("field '%s' failed rule '%s=%s'", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		messages = append(messages, fmt.Sprintf("field '%s' failed rule '%s'", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(messages, "; "))
}
