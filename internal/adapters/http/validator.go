package http

import (
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/studydash/core/internal/domain/entities"
)

// CustomValidator wraps the validator for echo
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator. entities.Date fields validate
// as plain timestamps so `required` means non-zero.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(entities.Date); ok {
			return d.Time
		}
		return nil
	}, entities.Date{})

	return &CustomValidator{validator: v}
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
