package describe

import (
	"fmt"
)

// ErrorKind classifies description failures.
type ErrorKind string

const (
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	ErrorKindRateLimited  ErrorKind = "rate_limited"
	ErrorKindNetwork      ErrorKind = "network"
	ErrorKindMalformed    ErrorKind = "malformed"
)

// APIError reports a failed description request.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Attempts   int
	Message    string
	Err        error
}

func (apiError *APIError) Error() string {
	message := string(apiError.Kind)
	if apiError.StatusCode != 0 {
		message += fmt.Sprintf(" (HTTP %d)", apiError.StatusCode)
	}
	if apiError.Attempts > 1 {
		message += fmt.Sprintf(" after %d attempts", apiError.Attempts)
	}
	if apiError.Message != "" {
		message += ": " + apiError.Message
	}
	if apiError.Err != nil {
		message += ": " + apiError.Err.Error()
	}
	return message
}

func (apiError *APIError) Unwrap() error {
	return apiError.Err
}

// retryable reports whether another attempt may succeed.
func (apiError *APIError) retryable() bool {
	return apiError.Kind == ErrorKindRateLimited || apiError.Kind == ErrorKindNetwork
}

// kindForStatus maps a non-success HTTP status to an error kind.
func kindForStatus(statusCode int) ErrorKind {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorKindUnauthorized
	case statusCode == 429:
		return ErrorKindRateLimited
	case statusCode >= 500:
		return ErrorKindNetwork
	default:
		return ErrorKindMalformed
	}
}
