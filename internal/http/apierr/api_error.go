package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/tuanvumaihuynh/inventory/pkg/validator"
	"github.com/tuanvumaihuynh/inventory/pkg/zerror"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON body of every non 2xx API response.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *[]FieldError `json:"details,omitempty"`

	// StatusCode is the status code for the error response.
	StatusCode int `json:"-"`
}

func New(err error) ErrorResponse {
	return errorToErrorResponse(err)
}

var InternalServerErr = ErrorResponse{
	Code:       "INTERNAL_SERVER_ERROR",
	Message:    "an unknown error occurred",
	StatusCode: http.StatusInternalServerError,
}

// Write encodes res as JSON with its status code.
func Write(w http.ResponseWriter, res ErrorResponse) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	return json.NewEncoder(w).Encode(res)
}

func errorToErrorResponse(err error) ErrorResponse {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		res := ErrorResponse{
			Code:       zErr.Code(),
			Message:    zErr.Msg(),
			StatusCode: ZErrorStatusToHTTPStatus(zErr.Status()),
		}

		var validationErrs govalidator.ValidationErrors
		if errors.As(zErr.Parent(), &validationErrs) {
			res.Details = fieldErrors(validationErrs)
		}
		return res
	}

	var validationErrs govalidator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return ErrorResponse{
			Code:       "VALIDATION_FAILED",
			Message:    "validation error",
			Details:    fieldErrors(validationErrs),
			StatusCode: http.StatusBadRequest,
		}
	}

	return InternalServerErr
}

func fieldErrors(errs govalidator.ValidationErrors) *[]FieldError {
	details := make([]FieldError, len(errs))
	for i, fe := range errs {
		details[i] = FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: validator.ValidationErrorMessage(fe),
		}
	}
	return &details
}

func ZErrorStatusToHTTPStatus(status zerror.Status) int {
	switch status {
	case zerror.StatusNotFound:
		return http.StatusNotFound
	case zerror.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case zerror.StatusBadRequest, zerror.StatusValidationFailed:
		return http.StatusBadRequest
	case zerror.StatusUnknown, zerror.StatusInternalServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
