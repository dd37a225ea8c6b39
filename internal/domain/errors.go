package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNotFound               = errors.New("not found")
	ErrConcurrencyConflict    = errors.New("concurrency conflict")
	ErrValidation             = errors.New("validation error")
)

// TransitionError reports a transition attempted from a state that does not allow it.
type TransitionError struct {
	From       State
	Transition string
	Reason     string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state transition %s from %s: %s", e.Transition, e.From, e.Reason)
	}
	return fmt.Sprintf("invalid state transition %s from %s", e.Transition, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// ValidationError reports an input that is malformed regardless of player state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidTransition(from State, transition, reason string) error {
	return &TransitionError{From: from, Transition: transition, Reason: reason}
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
