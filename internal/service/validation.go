package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bookstore-service/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPage = 0
	DefaultSize = 10
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		fields[fieldPath(fe)] = describe(fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read like "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " entries"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// NewPageRequest applies the listing defaults; page and size are nil when
// the caller did not supply them.
func NewPageRequest(page, size *int) (models.PageRequest, error) {
	req := models.PageRequest{Page: DefaultPage, Size: DefaultSize}
	if page != nil {
		req.Page = *page
	}
	if size != nil {
		req.Size = *size
	}
	if req.Page < 0 {
		return req, fieldError("page", "must not be negative")
	}
	if req.Size < 1 {
		return req, fieldError("size", "must be at least 1")
	}
	return req, nil
}
