package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// tagMessages renders the validation tags used by the request structs in
// this package. Anything else falls through to a generic message.
var tagMessages = map[string]func(field, param string) string{
	"required": func(field, _ string) string {
		return field + " is required"
	},
	"email": func(field, _ string) string {
		return field + " must be a valid email"
	},
	"oneof": func(field, param string) string {
		return fmt.Sprintf("%s must be one of: %s", field, param)
	},
	"startswith": func(field, param string) string {
		return fmt.Sprintf("%s must start with %q", field, param)
	},
}

type requestValidator struct {
	v *validator.Validate
}

// NewValidator returns the validator assigned to echo.Echo.Validator.
func NewValidator() *requestValidator {
	return &requestValidator{v: validator.New()}
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	msgs := make([]string, len(ve))
	for i, fe := range ve {
		field := strings.ToLower(fe.Field())
		if render, ok := tagMessages[fe.Tag()]; ok {
			msgs[i] = render(field, fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
