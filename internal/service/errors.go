package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fast-gateway-protocol/github/internal/github"
)

// Code is a stable, machine-readable error category. Every failure a caller
// can observe carries exactly one of these.
type Code string

const (
	CodeValidationFailed    Code = "VALIDATION_FAILED"
	CodeUnknownMethod       Code = "UNKNOWN_METHOD"
	CodeNotFound            Code = "NOT_FOUND"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeProviderUnavailable Code = "PROVIDER_UNAVAILABLE"
	CodeMalformedResponse   Code = "MALFORMED_RESPONSE"
)

// Error is a dispatch failure with a stable code and a human-readable
// message. The message never contains credentials.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds an Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// asServiceError translates any error surfaced by a handler into the
// dispatch taxonomy. Provider error messages pass through so the caller
// sees what GitHub said.
func asServiceError(err error) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	var apiErr *github.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case github.KindUnauthorized:
			return &Error{Code: CodeUnauthorized, Message: apiErr.Message}
		case github.KindNotFound:
			return &Error{Code: CodeNotFound, Message: apiErr.Message}
		case github.KindMalformed:
			return &Error{Code: CodeMalformedResponse, Message: apiErr.Message}
		default:
			return &Error{Code: CodeProviderUnavailable, Message: apiErr.Message}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Code: CodeProviderUnavailable, Message: err.Error()}
	}
	return &Error{Code: CodeProviderUnavailable, Message: err.Error()}
}
