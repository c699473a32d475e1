package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrNotFound indicates a requested conversation was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates the upstream service rejected the request
	// for exceeding its rate limit
	ErrRateLimited = errors.New("rate limited by upstream service")

	// ErrAuthFailed indicates the upstream service rejected our credentials
	ErrAuthFailed = errors.New("upstream authentication failed")

	// ErrUpstreamUnavailable indicates an upstream service returned a
	// non-retryable failure status
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrContentFiltered indicates the generation service refused the
	// prompt on safety grounds
	ErrContentFiltered = errors.New("content filtered by safety settings")

	// ErrInvalidGenerationOutput indicates the generation service returned
	// an empty or malformed result
	ErrInvalidGenerationOutput = errors.New("invalid generation output")

	// ErrDatabaseOperation indicates a database operation failed
	ErrDatabaseOperation = errors.New("database operation failed")
)

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited checks if error is an upstream rate-limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsContentFiltered checks if error is a safety-filter rejection
func IsContentFiltered(err error) bool {
	return errors.Is(err, ErrContentFiltered)
}
