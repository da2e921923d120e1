/*
Package errs provides custom error types and application-level error code constants.

This file defines CustomError, which carries a business code, a client-facing
message and the HTTP status used when the error crosses the HTTP facade.
*/
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"coderoom/internal/pkg/logx"
)

// CustomError is the application error returned to HTTP clients.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string

	// Status is the HTTP status code corresponding to this error.
	Status int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a registered code.
// details are printf arguments for templates containing verbs; for ErrUnknown the
// first detail may be the underlying error, which is logged rather than exposed.
// Unregistered codes degrade to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &unknownErr
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}

	switch {
	case code == ErrUnknown && len(details) > 0:
		if originalErr, ok := details[0].(error); ok {
			logx.Error(originalErr, "Handling ErrUnknown with underlying error")
		}
	case strings.Contains(customErr.Message, "%"):
		if len(details) == 0 {
			details = []any{"Entry"}
		}
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	case len(details) > 0:
		logx.Warn(
			"Details provided for error, but message template has no formatting placeholders. Details ignored.",
			"code", code,
		)
	}

	return &customErr
}

// As reports whether err is (or wraps) a *CustomError and returns it.
func As(err error) (*CustomError, bool) {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr, true
	}
	return nil, false
}
