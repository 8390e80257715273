package session

import (
	"errors"
	"fmt"
)

// ===== SESSION ERROR KINDS =====

var (
	ErrLoadFailure       = errors.New("failed to load quiz session")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrSubmissionFailure = errors.New("failed to submit attempt")
	ErrRetakeFailure     = errors.New("failed to start retake")
	ErrStaleAttempt      = errors.New("stored attempt does not match current quiz questions")
)

// TransitionError reports an operation invoked from a phase that forbids it.
type TransitionError struct {
	Op     string `json:"op"`
	Phase  Phase  `json:"phase"`
	Reason string `json:"reason,omitempty"`
}

func (e *TransitionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot %s in phase %s", e.Op, e.Phase)
	}
	return fmt.Sprintf("cannot %s in phase %s: %s", e.Op, e.Phase, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// OperationError wraps a collaborator failure with the session error kind it
// maps to. errors.Is matches both the kind and the underlying cause.
type OperationError struct {
	Kind   error
	QuizID uint
	Err    error
}

func NewOperationError(kind error, quizID uint, err error) *OperationError {
	return &OperationError{Kind: kind, QuizID: quizID, Err: err}
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v (quiz %d)", e.Kind, e.QuizID)
	}
	return fmt.Sprintf("%v (quiz %d): %v", e.Kind, e.QuizID, e.Err)
}

func (e *OperationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsInvalidTransition reports whether err came from a forbidden transition.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsRetryable reports whether the caller may retry the failed operation
// without losing session state.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSubmissionFailure) ||
		errors.Is(err, ErrRetakeFailure) ||
		errors.Is(err, ErrLoadFailure)
}
