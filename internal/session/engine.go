// Package session implements the state machine that drives a single quiz
// attempt from the first question to a scored, reviewable result.
//
// An Engine is owned by one caller and is not safe for concurrent use;
// callers serialize transitions themselves.
package session

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/SAP-F-2025/quiz-session-service/internal/scoring"
)

// Phase is the engine's position in the attempt lifecycle.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseAnswering  Phase = "answering"
	PhaseSubmitting Phase = "submitting"
	PhaseCompleted  Phase = "completed"
	PhaseReviewing  Phase = "reviewing"
)

// AttemptStore persists attempts on behalf of the engine. SubmitAttempt may
// return a nil history when the attempt was stored but the history could not
// be reloaded.
type AttemptStore interface {
	SubmitAttempt(ctx context.Context, quizID uint, submission models.AttemptSubmission) (*models.Attempt, []models.Attempt, error)
	RetakeQuiz(ctx context.Context, quizID uint) ([]models.Attempt, error)
}

// Engine drives one learner through one quiz attempt. It is not safe for
// concurrent use; callers serialize transitions.
type Engine struct {
	quiz   *models.Quiz
	store  AttemptStore
	logger *slog.Logger

	phase        Phase
	currentIndex int
	selected     string
	answers      []models.AnswerRecord

	// set once the attempt is completed
	result  *scoring.Result
	attempt *models.Attempt
	stale   bool

	history []models.Attempt
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithHistory seeds the engine with the learner's attempts, newest first.
func WithHistory(history []models.Attempt) Option {
	return func(e *Engine) {
		e.history = slices.Clone(history)
	}
}

// WithLogger replaces the default discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine returns an engine in PhaseNotStarted.
func NewEngine(quiz *models.Quiz, store AttemptStore, opts ...Option) *Engine {
	e := &Engine{
		quiz:   quiz,
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		phase:  PhaseNotStarted,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("quiz_id", quiz.ID)
	return e
}

// ===== TRANSITIONS =====

// Start begins the session. A completed prior attempt puts the engine straight
// into PhaseCompleted with that attempt's stored score; anything else starts
// answering from the first question.
func (e *Engine) Start(prior *models.Attempt) error {
	if e.phase != PhaseNotStarted {
		return e.invalid("start", "")
	}

	if prior != nil && prior.Completed {
		e.showAttempt(prior)
		e.logger.Info("Session resumed from completed attempt",
			"attempt_id", prior.ID,
			"score", prior.Score,
			"total_questions", prior.TotalQuestions,
			"stale", e.stale)
		return nil
	}

	if len(e.quiz.Questions) == 0 {
		return e.invalid("start", "quiz has no questions")
	}

	e.phase = PhaseAnswering
	e.currentIndex = 0
	e.selected = ""
	e.answers = nil

	e.logger.Info("Session started", "question_count", len(e.quiz.Questions))
	return nil
}

// SelectOption records the tentative choice for the current question. An
// empty option clears the selection.
func (e *Engine) SelectOption(option string) error {
	if e.phase != PhaseAnswering {
		return e.invalid("select option", "")
	}
	e.selected = option
	return nil
}

// Advance commits the current selection. On the last question it finalizes
// the attempt and submits it; the engine only reaches PhaseCompleted once the
// store has accepted it.
func (e *Engine) Advance(ctx context.Context) error {
	if e.phase != PhaseAnswering {
		return e.invalid("advance", "")
	}
	if e.selected == "" {
		return e.invalid("advance", "no option selected")
	}

	question := e.quiz.Questions[e.currentIndex]
	e.record(e.currentIndex, models.AnswerRecord{
		QuestionID: question.ID,
		Selected:   e.selected,
		Correct:    scoring.IsCorrect(question, e.selected),
	})

	if e.currentIndex < e.lastIndex() {
		e.currentIndex++
		e.selected = e.recordedSelection(e.currentIndex)
		return nil
	}

	e.phase = PhaseSubmitting
	return e.submit(ctx)
}

// GoBack returns to the previous question with its recorded selection. The
// record stays in place until the question is advanced again.
func (e *Engine) GoBack() error {
	if e.phase != PhaseAnswering {
		return e.invalid("go back", "")
	}
	if e.currentIndex == 0 {
		return e.invalid("go back", "already at first question")
	}

	e.currentIndex--
	e.selected = e.recordedSelection(e.currentIndex)
	return nil
}

// RetrySubmit resends the retained answers after a failed submission.
func (e *Engine) RetrySubmit(ctx context.Context) error {
	if e.phase != PhaseSubmitting {
		return e.invalid("retry submit", "")
	}
	return e.submit(ctx)
}

// ToggleReview switches between the result summary and the review listing.
func (e *Engine) ToggleReview() error {
	switch e.phase {
	case PhaseCompleted:
		if e.stale {
			return fmt.Errorf("cannot review attempt: %w", ErrStaleAttempt)
		}
		e.phase = PhaseReviewing
	case PhaseReviewing:
		e.phase = PhaseCompleted
	default:
		return e.invalid("toggle review", "")
	}
	return nil
}

// Retake asks the store to open a fresh attempt and resets the engine to
// PhaseNotStarted. On failure the completed result is left untouched.
func (e *Engine) Retake(ctx context.Context) error {
	if e.phase != PhaseCompleted {
		return e.invalid("retake", "")
	}

	history, err := e.store.RetakeQuiz(ctx, e.quiz.ID)
	if err != nil {
		e.logger.Error("Retake failed", "error", err)
		return NewOperationError(ErrRetakeFailure, e.quiz.ID, err)
	}
	if history != nil {
		e.history = history
	}

	e.reset()
	e.logger.Info("Session reset for retake")
	return nil
}

// ===== READ SIDE =====

func (e *Engine) Phase() Phase {
	return e.phase
}

func (e *Engine) Quiz() *models.Quiz {
	return e.quiz
}

func (e *Engine) CurrentIndex() int {
	return e.currentIndex
}

// CurrentQuestion returns the question being answered, or nil outside
// PhaseAnswering.
func (e *Engine) CurrentQuestion() *models.Question {
	if e.phase != PhaseAnswering {
		return nil
	}
	q := e.quiz.Questions[e.currentIndex]
	return &q
}

func (e *Engine) SelectedOption() string {
	return e.selected
}

func (e *Engine) CanAdvance() bool {
	return e.phase == PhaseAnswering && e.selected != ""
}

func (e *Engine) CanGoBack() bool {
	return e.phase == PhaseAnswering && e.currentIndex > 0
}

func (e *Engine) IsLastQuestion() bool {
	return e.phase == PhaseAnswering && e.currentIndex == e.lastIndex()
}

func (e *Engine) QuestionCount() int {
	return len(e.quiz.Questions)
}

// Answers returns a copy of the records committed so far.
func (e *Engine) Answers() []models.AnswerRecord {
	return slices.Clone(e.answers)
}

// Result returns the frozen score of the completed attempt.
func (e *Engine) Result() (scoring.Result, error) {
	if e.result == nil {
		return scoring.Result{}, e.invalid("read result", "attempt not completed")
	}
	return *e.result, nil
}

// Attempt returns the completed attempt being shown, if any.
func (e *Engine) Attempt() *models.Attempt {
	return e.attempt
}

// Stale reports whether the shown attempt was recorded against a different
// set of questions than the quiz now has.
func (e *Engine) Stale() bool {
	return e.stale
}

func (e *Engine) History() []models.Attempt {
	return slices.Clone(e.history)
}

// Review pairs each question with its recorded answer.
func (e *Engine) Review() (iter.Seq2[int, ReviewItem], error) {
	if e.phase != PhaseCompleted && e.phase != PhaseReviewing {
		return nil, e.invalid("review", "")
	}
	if e.stale {
		return nil, ErrStaleAttempt
	}
	return AssembleReview(e.quiz.Questions, e.answers), nil
}

// PriorAttempts summarizes completed attempts other than the one currently
// shown. Attempts are numbered from the oldest (1) and listed newest first.
func (e *Engine) PriorAttempts() []models.AttemptSummary {
	summaries := make([]models.AttemptSummary, 0, len(e.history))
	for i, a := range e.history {
		if !a.Completed {
			continue
		}
		if e.attempt != nil && a.ID == e.attempt.ID {
			continue
		}
		r := scoring.ResultFor(a.Score, a.TotalQuestions)
		summaries = append(summaries, models.AttemptSummary{
			AttemptID:      a.ID,
			Number:         len(e.history) - i,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			Percentage:     r.Percentage,
			Grade:          r.Grade,
			Completed:      a.Completed,
			CompletedAt:    a.CompletedAt,
		})
	}
	return summaries
}

// ===== INTERNALS =====

func (e *Engine) submit(ctx context.Context) error {
	submission := models.AttemptSubmission{
		Score:          scoring.Score(e.answers),
		TotalQuestions: len(e.quiz.Questions),
		Answers:        slices.Clone(e.answers),
	}

	e.logger.Info("Submitting attempt",
		"score", submission.Score,
		"total_questions", submission.TotalQuestions)

	stored, history, err := e.store.SubmitAttempt(ctx, e.quiz.ID, submission)
	if err != nil {
		e.logger.Error("Attempt submission failed", "error", err)
		return NewOperationError(ErrSubmissionFailure, e.quiz.ID, err)
	}

	if stored == nil {
		now := time.Now()
		stored = &models.Attempt{
			QuizID:         e.quiz.ID,
			Answers:        submission.Answers,
			Score:          submission.Score,
			TotalQuestions: submission.TotalQuestions,
			Completed:      true,
			CreatedAt:      now,
			CompletedAt:    &now,
		}
	}

	if history != nil {
		e.history = history
	} else {
		e.history = append([]models.Attempt{*stored}, e.history...)
	}

	result := scoring.Summarize(submission.Answers, submission.TotalQuestions)
	e.result = &result
	e.attempt = stored
	e.stale = false
	e.selected = ""
	e.phase = PhaseCompleted

	e.logger.Info("Attempt completed",
		"attempt_id", stored.ID,
		"score", result.Score,
		"percentage", result.Percentage,
		"grade", result.Grade)
	return nil
}

func (e *Engine) showAttempt(a *models.Attempt) {
	result := scoring.ResultFor(a.Score, a.TotalQuestions)
	e.result = &result
	e.attempt = a
	e.answers = a.AnswerList()
	e.stale = len(a.Answers) != len(e.quiz.Questions)
	e.selected = ""
	e.currentIndex = 0
	e.phase = PhaseCompleted
}

// record writes rec at index i, overwriting a previous answer to the same
// question instead of appending a duplicate.
func (e *Engine) record(i int, rec models.AnswerRecord) {
	if i < len(e.answers) {
		e.answers[i] = rec
		return
	}
	e.answers = append(e.answers, rec)
}

func (e *Engine) recordedSelection(i int) string {
	if i < len(e.answers) {
		return e.answers[i].Selected
	}
	return ""
}

func (e *Engine) lastIndex() int {
	return len(e.quiz.Questions) - 1
}

func (e *Engine) reset() {
	e.phase = PhaseNotStarted
	e.currentIndex = 0
	e.selected = ""
	e.answers = nil
	e.result = nil
	e.attempt = nil
	e.stale = false
}

func (e *Engine) invalid(op, reason string) error {
	err := &TransitionError{Op: op, Phase: e.phase, Reason: reason}
	e.logger.Error("Invalid session transition", "op", op, "phase", e.phase, "reason", reason)
	return err
}
