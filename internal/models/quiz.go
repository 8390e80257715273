package models

import (
	"time"

	"gorm.io/datatypes"
)

// Quiz is a generated multiple-choice quiz. Questions are ordered by Position
// and that order never changes once the quiz exists.
type Quiz struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	MaterialID    *uint     `json:"material_id,omitempty" gorm:"index"`
	MaterialTitle string    `json:"material_title,omitempty" gorm:"size:200"`
	CreatedAt     time.Time `json:"created_at"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

type Question struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	QuizID        uint                        `json:"quiz_id" gorm:"not null;index"`
	Position      int                         `json:"position" gorm:"not null"`
	Text          string                      `json:"question" gorm:"type:text;not null"`
	Options       datatypes.JSONSlice[string] `json:"options" gorm:"not null"`
	CorrectOption string                      `json:"correct_answer" gorm:"not null"`
}

// QuestionCount returns the number of questions in the quiz.
func (q *Quiz) QuestionCount() int {
	return len(q.Questions)
}

// HasOption reports whether option is one of the question's choices.
func (q *Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}
