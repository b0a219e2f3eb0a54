package helpers

import (
	"errors"
	"fmt"
	"time"

	"twstock-observer/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type ObserverError struct {
	Message string
	Cause   error
}

func (e *ObserverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ObserverError) Unwrap() error {
	return e.Cause
}

// NotFoundError: no market suffix candidate produced data for a stock code.
type NotFoundError struct{ ObserverError }

// ProviderError: transport failure or a provider-reported non-success envelope.
type ProviderError struct{ ObserverError }

// EmptyResultError: a valid response with zero usable rows. Surfaced as a
// warning, not an error; kept distinct from ProviderError because it is not
// necessarily a bug.
type EmptyResultError struct{ ObserverError }

// ComputationError: malformed or missing fields discovered while aggregating
// or computing indicators.
type ComputationError struct{ ObserverError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewNotFoundError(msg string, cause error) *NotFoundError {
	return &NotFoundError{ObserverError{Message: msg, Cause: cause}}
}

func NewProviderError(msg string, cause error) *ProviderError {
	return &ProviderError{ObserverError{Message: msg, Cause: cause}}
}

func NewEmptyResultError(msg string) *EmptyResultError {
	return &EmptyResultError{ObserverError{Message: msg}}
}

func NewComputationError(msg string, cause error) *ComputationError {
	return &ComputationError{ObserverError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Classification helpers (used at the rendering boundary)
// -----------------------------------------------------------------------------

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsProviderError(err error) bool {
	var e *ProviderError
	return errors.As(err, &e)
}

func IsEmptyResult(err error) bool {
	var e *EmptyResultError
	return errors.As(err, &e)
}

func IsComputationError(err error) bool {
	var e *ComputationError
	return errors.As(err, &e)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times
// with exponential backoff. NotFound and EmptyResult are provider answers,
// not transient faults, so they are returned immediately.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if IsNotFound(err) || IsEmptyResult(err) {
			return err
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return lastErr
}
