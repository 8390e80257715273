package session

import (
	"iter"
	"slices"

	"github.com/SAP-F-2025/quiz-session-service/internal/models"
)

// ReviewItem pairs a question with the answer recorded for it.
type ReviewItem struct {
	Question models.Question     `json:"question"`
	Answer   models.AnswerRecord `json:"answer"`
}

func (r ReviewItem) Correct() bool {
	return r.Answer.Correct
}

// AssembleReview returns a lazy sequence of question/answer pairs in question
// order. The inputs are copied, so the sequence can be ranged over any number
// of times and later changes to the slices do not leak into it. Unmatched
// trailing questions or answers are skipped.
func AssembleReview(questions []models.Question, answers []models.AnswerRecord) iter.Seq2[int, ReviewItem] {
	qs := slices.Clone(questions)
	as := slices.Clone(answers)

	return func(yield func(int, ReviewItem) bool) {
		n := min(len(qs), len(as))
		for i := 0; i < n; i++ {
			if !yield(i, ReviewItem{Question: qs[i], Answer: as[i]}) {
				return
			}
		}
	}
}
