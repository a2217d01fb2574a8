package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/listing"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("service unavailable")
)

// ValidationError carries field level problems alongside ErrValidation.
type ValidationError struct {
	Fields []listing.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation, e.Fields[0].Error())
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, message string) error {
	return &ValidationError{Fields: []listing.FieldError{{Field: field, Message: message}}}
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// mapDomain folds state machine errors into the service taxonomy
// while keeping the original error in the chain.
func mapDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrForbidden):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case errors.Is(err, domain.ErrProductSold),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrReasonRequired):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}
