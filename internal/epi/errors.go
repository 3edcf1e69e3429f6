package epi

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a scenario parameter outside its
	// valid range. Caller's fault; surfaced for correction, never
	// silently clamped.
	ErrInvalidParameter = errors.New("epi: invalid parameter")

	// ErrUnstable indicates population conservation broke down during
	// integration, normally because dt is too coarse for the rates.
	ErrUnstable = errors.New("epi: numerical instability")

	// ErrEmptyTrajectory indicates an empty or length-mismatched
	// trajectory was handed to the metrics layer. This is a contract
	// violation between components, not a user-recoverable condition.
	ErrEmptyTrajectory = errors.New("epi: empty or mismatched trajectory")
)

// ParameterError reports which scenario field failed validation.
type ParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s=%g (%s)", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// InstabilityError carries the step at which conservation failed.
type InstabilityError struct {
	Step  int
	Time  float64
	Drift float64
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%v: relative drift %.2e at step %d (t=%.4f); reduce dt",
		ErrUnstable, e.Drift, e.Step, e.Time)
}

func (e *InstabilityError) Unwrap() error {
	return ErrUnstable
}
