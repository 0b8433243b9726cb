/*
errors.go - Centralized error types for the schedule engine

PURPOSE:
  All error kinds in one place. Every failure here means the input model is
  inconsistent and must be corrected upstream; nothing is retried, nothing
  is coerced to zero.

ERROR CATEGORIES:
  1. Configuration errors - assumptions inconsistent with the horizon
     (sales pace overflows it, unknown allocation policy, no installment
     window left, missing financing fractions)
  2. Input shape errors - lists and mappings that do not line up
     (a unit type without a pace, a pace for an unknown unit type)

USAGE:
  if errors.Is(err, schedule.ErrConfiguration) {
      var cfg *schedule.ConfigurationError
      errors.As(err, &cfg)
      fmt.Println(cfg.Subject, cfg.Month)
  }
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfiguration is returned when assumptions cannot produce a schedule
	// on the configured horizon.
	ErrConfiguration = errors.New("configuration error")

	// ErrInputShape is returned when input lists and mappings do not match.
	ErrInputShape = errors.New("input shape error")
)

// =============================================================================
// STRUCTURED ERRORS - Carry enough context to find the bad input
// =============================================================================

// NoMonth marks a ConfigurationError that is not tied to a period.
const NoMonth = -1

// ConfigurationError locates a configuration inconsistency.
type ConfigurationError struct {
	Subject string // unit type, expense label or assumption name
	Month   int    // zero-based period, or NoMonth
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Month == NoMonth {
		return fmt.Sprintf("configuration error: %s: %s", e.Subject, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s at month %d: %s", e.Subject, e.Month, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// InputShapeError reports lists and mappings that do not line up.
type InputShapeError struct {
	Subject string
	Reason  string
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("input shape error: %s: %s", e.Subject, e.Reason)
}

func (e *InputShapeError) Unwrap() error {
	return ErrInputShape
}

func configErr(subject string, month int, format string, args ...any) error {
	return &ConfigurationError{Subject: subject, Month: month, Reason: fmt.Sprintf(format, args...)}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigurationError returns true if err is, or wraps, a configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsInputShapeError returns true if err is, or wraps, an input shape error.
func IsInputShapeError(err error) bool {
	return errors.Is(err, ErrInputShape)
}

// IsModelError returns true for any error caused by an invalid input model.
func IsModelError(err error) bool {
	return IsConfigurationError(err) || IsInputShapeError(err)
}
