package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotSuspended is returned when Resume is called on a session that is not
// waiting for a human answer (including a handle already consumed by a
// previous Resume).
var ErrNotSuspended = errors.New("session is not suspended")

// ErrNoRoute is returned when the router is asked to decide on a step it has
// no rule for. This is an internal consistency failure, never routed around.
var ErrNoRoute = errors.New("no routing rule")

// FailureKind classifies why a step's collaborator call failed.
type FailureKind string

const (
	FailureMalformedOutput FailureKind = "malformed_output"
	FailureEmptyResult     FailureKind = "empty_result"
	FailureTransport       FailureKind = "transport"
)

// StepError is a collaborator failure surfaced by a step. It terminates the
// session pass immediately; the core never defaults or retries it.
type StepError struct {
	Step StepName
	Kind FailureKind
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("step %s failed: %s", e.Step, e.Kind)
	}
	return fmt.Sprintf("step %s failed (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError wraps a collaborator failure with its step and kind.
func NewStepError(step StepName, kind FailureKind, err error) *StepError {
	return &StepError{Step: step, Kind: kind, Err: err}
}
