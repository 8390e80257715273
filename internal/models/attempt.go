package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnswerRecord is the learner's choice for one question. Correct is derived
// from the question's correct option at the time the record is written.
type AnswerRecord struct {
	QuestionID uint   `json:"questionId"`
	Selected   string `json:"selected"`
	Correct    bool   `json:"correct"`
}

// Attempt is one pass of a learner through a quiz. Completed attempts are
// never modified; a retake opens a new row instead.
type Attempt struct {
	ID             uint                              `json:"id" gorm:"primaryKey"`
	QuizID         uint                              `json:"quiz_id" gorm:"not null;index:idx_attempt_quiz_learner"`
	LearnerID      string                            `json:"learner_id" gorm:"not null;size:100;index:idx_attempt_quiz_learner"`
	Answers        datatypes.JSONSlice[AnswerRecord] `json:"answers"`
	Score          int                               `json:"score" gorm:"not null;default:0"`
	TotalQuestions int                               `json:"total_questions" gorm:"not null;default:0"`
	Completed      bool                              `json:"completed" gorm:"not null;default:false;index"`
	CreatedAt      time.Time                         `json:"created_at"`
	CompletedAt    *time.Time                        `json:"completed_at,omitempty"`
}

// AttemptSubmission is the payload sent to the attempt store when a session
// finalizes its last question.
type AttemptSubmission struct {
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	Answers        []AnswerRecord `json:"answers"`
}

// AttemptSummary is a compact, numbered view of a historical attempt.
// Number 1 is the oldest attempt.
type AttemptSummary struct {
	AttemptID      uint       `json:"attempt_id"`
	Number         int        `json:"number"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	Percentage     int        `json:"percentage"`
	Grade          string     `json:"grade"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// AnswerList returns the recorded answers as a plain slice.
func (a *Attempt) AnswerList() []AnswerRecord {
	if a == nil || len(a.Answers) == 0 {
		return nil
	}
	answers := make([]AnswerRecord, len(a.Answers))
	copy(answers, a.Answers)
	return answers
}
