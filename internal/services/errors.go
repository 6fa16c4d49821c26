// Package services holds errors shared by the domain services.
package services

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a request the caller must fix (bad field, bad state transition).
// The HTTP layer maps it to 400.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInput wraps a formatted message with ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
