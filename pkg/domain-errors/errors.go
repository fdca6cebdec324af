// Package domainerrors provides coded errors for the claim registry.
//
// Services attach a Code to every caller-visible rejection so transports can
// translate them uniformly and tests can assert on behavior instead of
// message text. Infrastructure facts (row missing, constraint violation) are
// reported by stores as sentinel errors and wrapped into coded errors at the
// service layer.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of caller-visible failure.
type Code string

const (
	// Claim lifecycle rejections.
	CodeUnknownCategory    Code = "unknown_category"
	CodeInvalidUnit        Code = "invalid_unit"
	CodeInvalidMethodology Code = "invalid_methodology"
	CodeOutOfRange         Code = "out_of_range_policy"
	CodeInvalidScore       Code = "invalid_score"
	CodeAlreadyVerified    Code = "already_verified"
	CodeClaimTooOld        Code = "claim_too_old"
	CodeDuplicateID        Code = "duplicate_id"

	// Ambient codes shared by all modules.
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal"
)

// Error is a coded domain error. The message is safe to surface to callers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code onto the HTTP status used by the transport layer.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnknownCategory, CodeInvalidUnit, CodeInvalidMethodology,
		CodeOutOfRange, CodeInvalidScore, CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyVerified, CodeConflict, CodeDuplicateID:
		return http.StatusConflict
	case CodeClaimTooOld:
		return http.StatusUnprocessableEntity
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
