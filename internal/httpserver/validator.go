package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/service"
)

// Validator adapts go-playground/validator to echo and reports field errors
// using the request's json names.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return domain.Condition(fl.Field().String()).Valid()
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &service.ValidationError{Fields: make([]listing.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, listing.FieldError{
			Field:   fieldPath(fe),
			Value:   fmt.Sprint(fe.Value()),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s items", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s items", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		return name + " must be a valid id"
	case "category":
		return "Invalid category"
	case "condition":
		return "Invalid condition"
	}
	return name + " is invalid"
}
