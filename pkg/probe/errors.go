package probe

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus matches any StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrCheckFailed is returned when a response has the wrong shape or values.
	ErrCheckFailed = errors.New("check failed")
)

// StatusError reports a response whose status code was not the expected one.
type StatusError struct {
	Method string
	Path   string
	Want   int
	Got    int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s: want %d, got %d: %s", e.Method, e.Path, ErrUnexpectedStatus, e.Want, e.Got, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

func checkFailed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCheckFailed, fmt.Sprintf(format, args...))
}
