package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"gt":       "{field} must be greater than {param}",
	"min":      "{field} must be at least {param}",
	"max":      "{field} must be at most {param}",
	"oneof":    "{field} must be one of {param}",
	"email":    "{field} must be a valid email address",
	"uuid":     "{field} must be a valid uuid",
	"ltfield":  "{field} must be before {param}",
	"nefield":  "{field} must differ from {param}",
	"daytime":  "{field} must be a date (YYYY-MM-DD) or an RFC3339 datetime",
	"money":    "{field} must have at most two decimal places",
}

// message describes the first violation that has a template, or falls back to
// the validator's own text.
func message(err error) string {
	var violations val.ValidationErrors
	if !errors.As(err, &violations) {
		return err.Error()
	}

	for _, v := range violations {
		tmpl, ok := messages[v.Tag()]
		if !ok {
			continue
		}

		return strings.NewReplacer("{field}", v.Field(), "{param}", v.Param()).Replace(tmpl)
	}

	return violations.Error()
}
