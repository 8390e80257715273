package validator

import (
	"testing"

	apperrors "github.com/SAP-F-2025/quiz-session-service/internal/errors"
	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmit() models.SubmitAttemptRequest {
	return models.SubmitAttemptRequest{
		QuizID:         1,
		Score:          1,
		TotalQuestions: 2,
		Answers: []models.SubmittedAnswer{
			{QuestionID: 1, Selected: "A"},
			{QuestionID: 2, Selected: "B"},
		},
	}
}

func rules(t *testing.T, err error) []string {
	t.Helper()
	var errs apperrors.ValidationErrors
	require.ErrorAs(t, err, &errs)
	var out []string
	for _, e := range errs {
		out = append(out, e.Field+":"+e.Rule)
	}
	return out
}

func TestValidator_SubmitAttempt(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		req := validSubmit()
		assert.NoError(t, v.Validate(&req))
	})

	t.Run("score above total", func(t *testing.T) {
		req := validSubmit()
		req.Score = 3
		assert.Contains(t, rules(t, v.Validate(&req)), "score:score_range")
	})

	t.Run("answer count mismatch", func(t *testing.T) {
		req := validSubmit()
		req.TotalQuestions = 3
		assert.Contains(t, rules(t, v.Validate(&req)), "answers:answer_count")
	})

	t.Run("missing selection", func(t *testing.T) {
		req := validSubmit()
		req.Answers[1].Selected = ""
		assert.Contains(t, rules(t, v.Validate(&req)), "answers[1].selected:required")
	})
}

func TestValidator_CreateQuiz(t *testing.T) {
	v := New()
	req := models.CreateQuizRequest{
		Title: "Plants",
		Questions: []models.CreateQuestionRequest{
			{Text: "Colour of chlorophyll?", Options: []string{"Green", "Red"}, CorrectOption: "Green"},
		},
	}
	assert.NoError(t, v.Validate(&req))

	req.Questions[0].CorrectOption = "Blue"
	assert.Contains(t, rules(t, v.Validate(&req)), "questions[0].correct_answer:correct_option")

	req.Questions[0].CorrectOption = "Green"
	req.Questions[0].Options = []string{"Green", "Green"}
	assert.Contains(t, rules(t, v.Validate(&req)), "questions[0].options:unique")

	empty := models.CreateQuizRequest{Title: "Empty"}
	assert.Contains(t, rules(t, v.Validate(&empty)), "questions:required")
}
