package webutil

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	msgBadRequest      = "Bad Request"
	msgNotFound        = "Resource not found"
	msgInternalServer  = "Internal Server Error"
	msgUnauthorized    = "Authentication credentials were not provided or are invalid"
	msgForbidden       = "You do not have permission to perform this action"
	msgConflict        = "Conflict"
	msgTooManyRequests = "Too many requests, slow down"
	msgValidation      = "Validation failed"
)

// HTTPError carries an HTTP status, a user-facing message and optional
// per-field validation messages.
type HTTPError struct {
	cause   error
	Code    int
	Message string
	Fields  map[string]string
}

// Error returns the public message.
func (he HTTPError) Error() string {
	return he.Message
}

func (he HTTPError) Unwrap() error {
	return he.cause
}

func defaultMessageIfEmpty(initialMsg, defaultVal string) string {
	if initialMsg == "" {
		return defaultVal
	}
	return initialMsg
}

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		cause:   errors.New(message),
		Code:    code,
		Message: message,
	}
}

func NewHTTPErrorWrap(code int, message string, cause error) *HTTPError {
	return &HTTPError{
		cause:   cause,
		Code:    code,
		Message: message,
	}
}

// WithField attaches a validation message for one request field.
func (he *HTTPError) WithField(field, message string) *HTTPError {
	if he.Fields == nil {
		he.Fields = make(map[string]string)
	}
	he.Fields[field] = message
	return he
}

// ErrValidation builds a 400 whose body lists every offending field.
func ErrValidation(fields map[string]string) *HTTPError {
	e := NewHTTPError(http.StatusBadRequest, msgValidation)
	e.Fields = fields
	return e
}

// FieldError is a 400 for a single field, with the field message as the public message.
func FieldError(field, message string) *HTTPError {
	return ErrBadRequest(message).WithField(field, message)
}

func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, defaultMessageIfEmpty(message, msgBadRequest))
}

func ErrBadRequestWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusBadRequest, defaultMessageIfEmpty(message, msgBadRequest), cause)
}

func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, defaultMessageIfEmpty(message, msgNotFound))
}

func ErrNotFoundWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusNotFound, defaultMessageIfEmpty(message, msgNotFound), cause)
}

// ErrInternalServerWrap hides message from the client and keeps it in the logged cause.
func ErrInternalServerWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusInternalServerError, msgInternalServer, fmt.Errorf("%s: %w", message, cause))
}

func ErrUnauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, defaultMessageIfEmpty(message, msgUnauthorized))
}

func ErrUnauthorizedWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusUnauthorized, defaultMessageIfEmpty(message, msgUnauthorized), cause)
}

func ErrForbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, defaultMessageIfEmpty(message, msgForbidden))
}

func ErrConflict(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, defaultMessageIfEmpty(message, msgConflict))
}

func ErrTooManyRequests(message string) *HTTPError {
	return NewHTTPError(http.StatusTooManyRequests, defaultMessageIfEmpty(message, msgTooManyRequests))
}
