package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Custom registrations belong in init().
var v = validator.New()

// Struct validates s using its validate tags and folds every field failure into one message.
func Struct(s any) error {
	return flatten(v.Struct(s))
}

// Var validates a single value against tag, reporting failures under name.
func Var(name string, value any, tag string) error {
	if err := v.Var(value, tag); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		return fmt.Errorf("%s failed '%s'", name, ve[0].Tag())
	}
	return nil
}

func flatten(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
