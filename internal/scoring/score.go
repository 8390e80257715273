// Package scoring derives scores, percentages and letter grades from answer
// records. Every function here is pure.
package scoring

import (
	"math"

	"github.com/SAP-F-2025/quiz-session-service/internal/models"
)

// Result bundles the figures shown for a completed attempt.
type Result struct {
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Grade      string `json:"grade"`
}

// Score counts the correct answer records.
func Score(answers []models.AnswerRecord) int {
	score := 0
	for _, a := range answers {
		if a.Correct {
			score++
		}
	}
	return score
}

// Percentage returns round(100*score/total), rounding half away from zero.
// A non-positive total yields 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(total)))
}

// IsCorrect reports whether selected matches the question's correct option.
func IsCorrect(question models.Question, selected string) bool {
	return selected == question.CorrectOption
}

// Evaluate pairs selections with questions in order and derives correctness.
// Selections beyond the question count are ignored.
func Evaluate(questions []models.Question, selected []string) []models.AnswerRecord {
	n := min(len(questions), len(selected))
	records := make([]models.AnswerRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, models.AnswerRecord{
			QuestionID: questions[i].ID,
			Selected:   selected[i],
			Correct:    IsCorrect(questions[i], selected[i]),
		})
	}
	return records
}

// Summarize computes score, percentage and grade for a set of answers.
func Summarize(answers []models.AnswerRecord, total int) Result {
	score := Score(answers)
	return ResultFor(score, total)
}

// ResultFor builds a Result from an already known score.
func ResultFor(score, total int) Result {
	pct := Percentage(score, total)
	return Result{
		Score:      score,
		Total:      total,
		Percentage: pct,
		Grade:      Grade(pct),
	}
}
