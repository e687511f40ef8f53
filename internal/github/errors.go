package github

import "fmt"

// ErrorKind classifies why an API call failed.
type ErrorKind string

const (
	// KindUnauthorized means the token was rejected or lacks scope.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindNotFound means the requested entity does not exist or is invisible
	// to the token. GitHub reports both cases as 404.
	KindNotFound ErrorKind = "not_found"
	// KindUnavailable covers network failures, timeouts, and any error
	// status other than 401/403/404, rate limits included.
	KindUnavailable ErrorKind = "unavailable"
	// KindMalformed means the provider answered with a body that does not
	// parse as the expected shape.
	KindMalformed ErrorKind = "malformed"
)

// APIError is a classified GitHub API failure.
type APIError struct {
	Kind    ErrorKind
	Status  int // HTTP status, 0 for transport-level failures
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("github: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("github: %s: %s", e.Kind, e.Message)
}
