package apperr

import (
	"errors"

	"github.com/tuanvumaihuynh/inventory/pkg/zerror"
)

const (
	ValidationErrorCode = "VALIDATION_FAILED"
	FormatErrorCode     = "FORMAT_ERROR"
	NotFoundErrorCode   = "NOT_FOUND"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	// FormatErr is returned when imported text cannot be converted to a typed value.
	FormatErr   = zerror.NewUnprocessableEntity(FormatErrorCode, "malformed value")
	NotFoundErr = zerror.NewNotFound(NotFoundErrorCode, "resource not found")
)

func IsValidationError(err error) bool {
	return errors.Is(err, ValidationErr)
}

func IsFormatError(err error) bool {
	return errors.Is(err, FormatErr)
}
