package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a registry failure. Handlers translate codes to HTTP status;
// services never touch transport concerns directly.
type Code string

const (
	// Domain failures.
	CodeDuplicateLocation Code = "duplicate_location"
	CodeUnknownParcel     Code = "unknown_parcel"
	CodeNotVerifier       Code = "not_verifier"
	CodeNotController     Code = "not_controller"
	CodeNotAuthorized     Code = "not_authorized"
	CodeAlreadyVerified   Code = "already_verified"

	// Ambient failures.
	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal"
)

// RegistryError carries a machine-readable code alongside the message so the
// transport layer can map failures without string matching.
type RegistryError struct {
	Code    Code
	Message string
	cause   error
}

func (e *RegistryError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RegistryError) Unwrap() error { return e.cause }

// New builds a coded error with no underlying cause.
func New(code Code, message string) error {
	return &RegistryError{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &RegistryError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &RegistryError{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// produced outside this package.
func CodeOf(err error) Code {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status handlers should respond with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeDuplicateLocation, CodeAlreadyVerified:
		return http.StatusConflict
	case CodeUnknownParcel, CodeNotFound:
		return http.StatusNotFound
	case CodeNotVerifier, CodeNotController, CodeNotAuthorized:
		return http.StatusForbidden
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
