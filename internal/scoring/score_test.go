package scoring

import (
	"testing"

	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		percentage int
		want       string
	}{
		{100, "A"},
		{90, "A"},
		{89, "B"},
		{80, "B"},
		{79, "C"},
		{70, "C"},
		{69, "D"},
		{60, "D"},
		{59, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.percentage), "percentage %d", tt.percentage)
	}
}

func TestGradeWithScale(t *testing.T) {
	scale := []GradeThreshold{{MinPercentage: 50, Grade: "PASS"}}
	assert.Equal(t, "PASS", GradeWithScale(50, scale))
	assert.Equal(t, FailingGrade, GradeWithScale(49, scale))
	assert.Equal(t, FailingGrade, GradeWithScale(100, nil))
}

func TestPercentage(t *testing.T) {
	t.Run("rounds half away from zero", func(t *testing.T) {
		assert.Equal(t, 67, Percentage(2, 3))
		assert.Equal(t, 33, Percentage(1, 3))
		assert.Equal(t, 50, Percentage(1, 2))
		assert.Equal(t, 13, Percentage(1, 8)) // 12.5
	})

	t.Run("zero total", func(t *testing.T) {
		assert.Equal(t, 0, Percentage(0, 0))
		assert.Equal(t, 0, Percentage(3, -1))
	})

	t.Run("full marks", func(t *testing.T) {
		assert.Equal(t, 100, Percentage(7, 7))
	})
}

func TestScore(t *testing.T) {
	answers := []models.AnswerRecord{
		{QuestionID: 1, Selected: "A", Correct: true},
		{QuestionID: 2, Selected: "X", Correct: false},
		{QuestionID: 3, Selected: "C", Correct: true},
	}

	assert.Equal(t, 2, Score(answers))
	assert.Equal(t, 2, Score(answers), "score must be stable across calls")
	assert.Equal(t, 0, Score(nil))
}

func TestEvaluate(t *testing.T) {
	questions := []models.Question{
		{ID: 1, CorrectOption: "A"},
		{ID: 2, CorrectOption: "B"},
		{ID: 3, CorrectOption: "C"},
	}

	t.Run("mixed answers", func(t *testing.T) {
		records := Evaluate(questions, []string{"A", "X", "C"})

		assert.Len(t, records, 3)
		assert.Equal(t, models.AnswerRecord{QuestionID: 1, Selected: "A", Correct: true}, records[0])
		assert.Equal(t, models.AnswerRecord{QuestionID: 2, Selected: "X", Correct: false}, records[1])
		assert.Equal(t, models.AnswerRecord{QuestionID: 3, Selected: "C", Correct: true}, records[2])

		result := Summarize(records, len(questions))
		assert.Equal(t, Result{Score: 2, Total: 3, Percentage: 67, Grade: "D"}, result)
	})

	t.Run("extra selections ignored", func(t *testing.T) {
		records := Evaluate(questions[:1], []string{"A", "B"})
		assert.Len(t, records, 1)
	})
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, Result{Score: 9, Total: 10, Percentage: 90, Grade: "A"}, ResultFor(9, 10))
	assert.Equal(t, Result{Score: 0, Total: 0, Percentage: 0, Grade: "F"}, ResultFor(0, 0))
}
