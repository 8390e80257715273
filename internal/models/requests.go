package models

// ===== REQUEST PAYLOADS =====

type CreateQuizRequest struct {
	Title         string                  `json:"title" validate:"required,min=1,max=200"`
	MaterialID    *uint                   `json:"material_id"`
	MaterialTitle string                  `json:"material_title" validate:"max=200"`
	Questions     []CreateQuestionRequest `json:"questions" validate:"required,min=1,max=100,dive"`
}

type CreateQuestionRequest struct {
	Text          string   `json:"question" validate:"required,max=2000"`
	Options       []string `json:"options" validate:"required,min=2,max=10,unique,dive,required,max=500"`
	CorrectOption string   `json:"correct_answer" validate:"required"`
}

// SubmitAttemptRequest mirrors the learner client's submission. Correctness
// is always re-derived server side from the quiz.
type SubmitAttemptRequest struct {
	QuizID         uint              `json:"quiz_id" validate:"required"`
	Score          int               `json:"score" validate:"min=0"`
	TotalQuestions int               `json:"total_questions" validate:"required,min=1"`
	Answers        []SubmittedAnswer `json:"answers" validate:"required,min=1,dive"`
}

type SubmittedAnswer struct {
	QuestionID uint   `json:"questionId" validate:"required"`
	Selected   string `json:"selected" validate:"required"`
}

// ToQuiz builds the quiz model, keeping question order.
func (r *CreateQuizRequest) ToQuiz() *Quiz {
	quiz := &Quiz{
		Title:         r.Title,
		MaterialID:    r.MaterialID,
		MaterialTitle: r.MaterialTitle,
		Questions:     make([]Question, len(r.Questions)),
	}
	for i, q := range r.Questions {
		quiz.Questions[i] = Question{
			Position:      i,
			Text:          q.Text,
			Options:       append([]string(nil), q.Options...),
			CorrectOption: q.CorrectOption,
		}
	}
	return quiz
}

// Selections returns the selected options in submission order.
func (r *SubmitAttemptRequest) Selections() []string {
	selected := make([]string, len(r.Answers))
	for i, a := range r.Answers {
		selected[i] = a.Selected
	}
	return selected
}
