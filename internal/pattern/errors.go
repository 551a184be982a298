package pattern

import (
	"errors"
	"fmt"
)

// Sentinel errors for the generation failure modes
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnknownStyle     = errors.New("unknown style")
	ErrTempoResolution  = errors.New("tempo resolution failed")
)

// InvalidParameterError reports an out-of-domain numeric, meter or style input
type InvalidParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// UnknownStyleError reports a style name outside the supported set
type UnknownStyleError struct {
	Name string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("unknown style %q (allowed: %s)", e.Name, joinStyleNames())
}

func (e *UnknownStyleError) Is(target error) bool {
	return target == ErrUnknownStyle
}

// TempoResolutionError reports a failed BPM lookup with no fallback available
type TempoResolutionError struct {
	Title  string
	Artist string
	Cause  error
}

func (e *TempoResolutionError) Error() string {
	song := e.Title
	if e.Artist != "" {
		song = e.Artist + " - " + e.Title
	}
	if e.Cause != nil {
		return fmt.Sprintf("could not resolve BPM for %q: %v", song, e.Cause)
	}
	return fmt.Sprintf("could not resolve BPM for %q", song)
}

func (e *TempoResolutionError) Unwrap() error {
	return e.Cause
}

func (e *TempoResolutionError) Is(target error) bool {
	return target == ErrTempoResolution
}

func invalidParam(field string, value any, reason string) error {
	return &InvalidParameterError{Field: field, Value: value, Reason: reason}
}

// checkUnit validates that a stochastic-expression amount lies in [0,1]
func checkUnit(field string, value float64) error {
	if value < 0 || value > 1 || value != value {
		return invalidParam(field, value, "must be within [0, 1]")
	}
	return nil
}
