package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/next-trace/scg-mediator/contract/result"
)

// Struct validates Q using go-playground `validate` struct tags. A nil v uses a validator that
// names fields after their json tag when present.
func Struct[Q any](v *validator.Validate) Validator[Q] {
	if v == nil {
		v = NewValidate()
	}

	return Func[Q](func(_ context.Context, req Q) ([]result.Failure, error) {
		err := v.Struct(req)
		if err == nil {
			return nil, nil
		}

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate %T: %w", req, err)
		}

		failures := make([]result.Failure, 0, len(verrs))
		for _, fe := range verrs {
			failures = append(failures, result.Failure{
				Field:   fe.Field(),
				Code:    fe.Tag(),
				Message: message(fe),
			})
		}

		return failures, nil
	})
}

// NewValidate returns a validator that reports json field names, lowercased otherwise.
// It also knows the notblank tag, which rejects whitespace-only strings.
func NewValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return strings.ToLower(f.Name)
		default:
			return name
		}
	})

	return v
}

func message(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "notblank":
		return fe.Field() + " must not be blank"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + unit
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + unit
	case "email":
		return fe.Field() + " must be a valid email address"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	default:
		return fe.Field() + " failed " + fe.Tag() + " check"
	}
}
