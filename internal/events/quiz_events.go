package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents the kinds of attempt lifecycle events
type EventType string

const (
	EventAttemptSubmitted     EventType = "attempt.submitted"
	EventAttemptRetakeStarted EventType = "attempt.retake_started"
)

const (
	EventSource  = "quiz-session-service"
	EventVersion = "1.0"
)

// QuizEvent is the envelope published for every attempt lifecycle event
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type AttemptSubmittedEvent struct {
	AttemptID      uint      `json:"attempt_id"`
	QuizID         uint      `json:"quiz_id"`
	QuizTitle      string    `json:"quiz_title,omitempty"`
	LearnerID      string    `json:"learner_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	Grade          string    `json:"grade"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type AttemptRetakeStartedEvent struct {
	AttemptID     uint      `json:"attempt_id"`
	QuizID        uint      `json:"quiz_id"`
	LearnerID     string    `json:"learner_id"`
	PriorAttempts int       `json:"prior_attempts"`
	StartedAt     time.Time `json:"started_at"`
}

// ForLearner tags the event with the learner it concerns.
func (e *QuizEvent) ForLearner(learnerID string) *QuizEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{}, 1)
	}
	e.Metadata["learner_id"] = learnerID
	return e
}

// NewQuizEvent wraps data in an envelope with a fresh event ID
func NewQuizEvent(eventType EventType, data interface{}) *QuizEvent {
	return &QuizEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    EventSource,
		Version:   EventVersion,
		Data:      data,
	}
}
