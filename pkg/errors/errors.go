package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork          ErrorType = "network"
	ErrorTypeRateLimit        ErrorType = "rate_limit"
	ErrorTypeAuth             ErrorType = "auth"
	ErrorTypeParsing          ErrorType = "parsing"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeServerError      ErrorType = "server_error"
	ErrorTypeInvalidState     ErrorType = "invalid_state"
	ErrorTypeInvalidParameter ErrorType = "invalid_parameter"
	ErrorTypeUnknown          ErrorType = "unknown"
)

// Sentinel errors for the local failure modes. Match them with errors.Is.
var (
	// ErrInvalidState is returned when the callback state does not match the
	// nonce stored for the session, or no nonce was stored at all.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidParameter is returned when a request fails local validation
	// before anything is sent to the API.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Error represents an API error with type information.
// Body holds the raw response body for errors produced from an HTTP response;
// Err holds the underlying cause for transport and decode failures.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Network wraps a transport failure.
func Network(err error) *Error {
	return &Error{
		Type:    ErrorTypeNetwork,
		Message: fmt.Sprintf("network error: %v", err),
		Err:     err,
	}
}

// Parsing wraps a JSON decode failure of a response with the given status.
func Parsing(code int, err error) *Error {
	return &Error{
		Type:    ErrorTypeParsing,
		Message: fmt.Sprintf("failed to parse JSON: %v", err),
		Code:    code,
		Err:     err,
	}
}

// InvalidParameter returns an error matching ErrInvalidParameter with the given message.
func InvalidParameter(msg string) error {
	return &Error{
		Type:    ErrorTypeInvalidParameter,
		Message: msg,
		Err:     ErrInvalidParameter,
	}
}

// InvalidState returns an error matching ErrInvalidState with the given message.
func InvalidState(msg string) error {
	return &Error{
		Type:    ErrorTypeInvalidState,
		Message: msg,
		Err:     ErrInvalidState,
	}
}

// FromStatus builds an error for a non-2xx response. The body is kept as is.
func FromStatus(code int, body []byte) *Error {
	e := &Error{Code: code, Body: body}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		e.Type = ErrorTypeAuth
		e.Message = "authentication required"
	case code == http.StatusNotFound:
		e.Type = ErrorTypeNotFound
		e.Message = "resource not found"
	case code == http.StatusTooManyRequests:
		e.Type = ErrorTypeRateLimit
		e.Message = "rate limit exceeded"
	case code >= 500:
		e.Type = ErrorTypeServerError
		e.Message = "server error"
	default:
		e.Type = ErrorTypeUnknown
		e.Message = fmt.Sprintf("unexpected status code: %d", code)
	}
	return e
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsStatusCode reports whether err carries the given HTTP status code.
func IsStatusCode(err error, code int) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
