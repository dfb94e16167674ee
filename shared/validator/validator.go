// Package validator decodes request bodies and checks them against their
// `validate` tags. Violations become 400 failures naming the JSON field.
package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"guesthouse/shared/calendar"
	"guesthouse/shared/failure"

	val "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidate()

func newValidate() *val.Validate {
	v := val.New(val.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	for tag, fn := range map[string]val.Func{
		"daytime": dayOrInstant,
		"money":   money,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("registering %s validation: %v", tag, err))
		}
	}

	return v
}

// jsonName reports fields by the name clients send.
func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

// dayOrInstant accepts a calendar date or an RFC3339 timestamp.
func dayOrInstant(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := calendar.ParseInstant(value, 0)

	return err == nil
}

// money rejects amounts with more than two fractional digits.
func money(field val.FieldLevel) bool {
	switch v := field.Field().Interface().(type) {
	case decimal.Decimal:
		return v.Equal(v.Round(2))
	case float64:
		cents := v * 100

		return math.Abs(cents-math.Round(cents)) < 1e-6
	default:
		return false
	}
}

// decimalValue exposes decimal.Decimal fields to the numeric tags (gte, gt, ...).
func decimalValue(field reflect.Value) any {
	if value, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := value.Float64()

		return f
	}

	return nil
}

// Validate decodes one JSON document from r into data and validates it.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
