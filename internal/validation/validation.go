// Package validation maps loosely typed input onto checked structs. It owns
// the single validator instance shared by the HTTP boundary and the
// repositories, and turns validator failures into a ValidationError that
// lists every violated field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ValidationError struct {
	Fields []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("'%s': %s", f.Field, f.Reason))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the violations.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}

	return false
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("money", money)

	return &Validator{validate: v}
}

// Struct validates s. A failed check comes back as *ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	violations := make([]FieldViolation, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		violations = append(violations, FieldViolation{Field: fieldPath(fe), Reason: message(fe)})
	}

	return &ValidationError{Fields: violations}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}

	return name
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}

	return nil
}

// maxMoney is the first amount that no longer fits the stored cents column.
var maxMoney = decimal.New(1, 16)

// money accepts amounts with at most two decimal places below maxMoney. The
// check reads the original decimal from the parent struct because the
// registered custom type hands validators a float64.
func money(fl validator.FieldLevel) bool {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() != reflect.Struct {
		return false
	}

	d, ok := parent.FieldByName(fl.StructFieldName()).Interface().(decimal.Decimal)
	if !ok {
		return false
	}

	return d.LessThan(maxMoney) && d.Equal(d.Truncate(2))
}

// fieldPath drops the top-level struct name: "NewBidInput.amount" -> "amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}

	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return messageForString(fe)
	case reflect.Slice, reflect.Array, reflect.Map:
		return messageForList(fe)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return messageForNumber(fe)
	}

	if fe.Tag() == "required" {
		return "this field is required"
	}

	return "incorrect value passed"
}

func messageForNumber(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "gt":
		return "should be greater than " + fe.Param()
	case "lt":
		return "should be less than " + fe.Param()
	case "lte", "max":
		return "should be less or equal than " + fe.Param()
	case "gte", "min":
		return "should be greater or equal than " + fe.Param()
	case "money":
		return "should have at most 2 decimal places and be less than " + maxMoney.String()
	}

	return "incorrect value passed"
}

func messageForString(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "length should be less or equal than " + fe.Param()
	case "gte", "min":
		return "length should be greater or equal than " + fe.Param()
	case "oneof":
		return "should have value in: " + fe.Param()
	case "uuid", "uuid4":
		return "should be a valid uuid"
	}

	return "incorrect value passed"
}

func messageForList(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "should contain at most " + fe.Param() + " items"
	case "gte", "min":
		return "should contain at least " + fe.Param() + " items"
	}

	return "incorrect value passed"
}
