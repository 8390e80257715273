package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-session-service/internal/errors"
	"github.com/SAP-F-2025/quiz-session-service/internal/session"
)

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrLearnerRequired  = errors.New("learner id is required")

	ErrQuizNotFound            = errors.New("quiz not found")
	ErrAttemptAlreadySubmitted = errors.New("quiz already completed, use retake option")
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// BusinessRuleError rejects a well formed submission that disagrees with the
// stored quiz.
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("submission rejected by %s rule: %s", e.Rule, e.Message)
}

// ===== CLASSIFICATION =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound)
}

func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrValidationFailed), errors.Is(err, ErrLearnerRequired):
		return true
	}
	var many apperrors.ValidationErrors
	var one *apperrors.ValidationError
	return errors.As(err, &many) || errors.As(err, &one)
}

func IsBusinessRule(err error) bool {
	var rule *BusinessRuleError
	return errors.As(err, &rule)
}

// IsConflict reports errors caused by the attempt's current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptAlreadySubmitted) || errors.Is(err, session.ErrInvalidTransition)
}
