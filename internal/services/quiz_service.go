package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-session-service/internal/events"
	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/SAP-F-2025/quiz-session-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-session-service/internal/scoring"
	"github.com/SAP-F-2025/quiz-session-service/internal/validator"
)

// QuizService is the attempt store seen from outside the process. It is
// stateless with respect to learners; every call names the learner.
type QuizService interface {
	CreateQuiz(ctx context.Context, req *models.CreateQuizRequest) (*models.Quiz, error)
	GetQuiz(ctx context.Context, quizID uint) (*models.Quiz, error)
	ListQuizzes(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error)

	LoadHistory(ctx context.Context, quizID uint, learnerID string) ([]models.Attempt, error)
	GetHistory(ctx context.Context, quizID uint, learnerID string) (*HistoryResponse, error)

	// SubmitResults validates a client submission against the quiz and
	// stores it.
	SubmitResults(ctx context.Context, learnerID string, req *models.SubmitAttemptRequest) (*SubmitResponse, error)
	// RecordAttempt stores an already scored submission.
	RecordAttempt(ctx context.Context, quizID uint, learnerID string, submission models.AttemptSubmission) (*models.Attempt, error)
	Retake(ctx context.Context, quizID uint, learnerID string) (*models.Attempt, error)
}

// ===== RESPONSE TYPES =====

type AttemptView struct {
	models.Attempt
	Percentage int    `json:"percentage"`
	Grade      string `json:"grade"`
}

type HistoryResponse struct {
	QuizID       uint          `json:"quiz_id"`
	AttemptCount int           `json:"attempt_count"`
	Attempts     []AttemptView `json:"attempts"`
}

type SubmitResponse struct {
	AttemptID      uint   `json:"attempt_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	Percentage     int    `json:"percentage"`
	Grade          string `json:"grade"`
}

type quizService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, LogConfig{Service: "quiz-session-service", Component: "quiz"}),
		validator: validator,
	}
}

// ===== QUIZ OPERATIONS =====

func (s *quizService) CreateQuiz(ctx context.Context, req *models.CreateQuizRequest) (*models.Quiz, error) {
	s.logger.Info("Creating quiz", "title", req.Title, "question_count", len(req.Questions))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	quiz := req.ToQuiz()
	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID)
	return quiz, nil
}

func (s *quizService) GetQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) ListQuizzes(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	filters.Limit = min(filters.Limit, 100)
	filters.Offset = max(filters.Offset, 0)
	quizzes, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, total, nil
}

// ===== HISTORY =====

func (s *quizService) LoadHistory(ctx context.Context, quizID uint, learnerID string) ([]models.Attempt, error) {
	if learnerID == "" {
		return nil, ErrLearnerRequired
	}
	history, err := s.repo.Attempt().GetHistory(ctx, quizID, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt history: %w", err)
	}
	return history, nil
}

func (s *quizService) GetHistory(ctx context.Context, quizID uint, learnerID string) (*HistoryResponse, error) {
	history, err := s.LoadHistory(ctx, quizID, learnerID)
	if err != nil {
		return nil, err
	}

	views := make([]AttemptView, len(history))
	for i, a := range history {
		r := scoring.ResultFor(a.Score, a.TotalQuestions)
		views[i] = AttemptView{Attempt: a, Percentage: r.Percentage, Grade: r.Grade}
	}

	return &HistoryResponse{
		QuizID:       quizID,
		AttemptCount: len(history),
		Attempts:     views,
	}, nil
}

// ===== SUBMISSION =====

func (s *quizService) SubmitResults(ctx context.Context, learnerID string, req *models.SubmitAttemptRequest) (*SubmitResponse, error) {
	op := s.opLogger.WithOperation(ctx, "submit_results", learnerID)

	resp, err := s.submitResults(ctx, learnerID, req)
	op.LogResult(req.QuizID, err)
	return resp, err
}

func (s *quizService) submitResults(ctx context.Context, learnerID string, req *models.SubmitAttemptRequest) (*SubmitResponse, error) {
	if learnerID == "" {
		return nil, ErrLearnerRequired
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	quiz, err := s.GetQuiz(ctx, req.QuizID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSubmittable(ctx, quiz.ID, learnerID); err != nil {
		return nil, err
	}

	answers, err := evaluateSubmission(quiz, req)
	if err != nil {
		return nil, err
	}

	submission := models.AttemptSubmission{
		Score:          scoring.Score(answers),
		TotalQuestions: quiz.QuestionCount(),
		Answers:        answers,
	}
	attempt, err := s.RecordAttempt(ctx, quiz.ID, learnerID, submission)
	if err != nil {
		return nil, err
	}

	result := scoring.ResultFor(attempt.Score, attempt.TotalQuestions)
	return &SubmitResponse{
		AttemptID:      attempt.ID,
		Score:          result.Score,
		TotalQuestions: result.Total,
		Percentage:     result.Percentage,
		Grade:          result.Grade,
	}, nil
}

// ensureSubmittable rejects a submission when the learner's latest attempt is
// already completed. The store repeats the check inside its transaction.
func (s *quizService) ensureSubmittable(ctx context.Context, quizID uint, learnerID string) error {
	latest, err := s.repo.Attempt().GetLatest(ctx, quizID, learnerID)
	switch {
	case repositories.IsNotFoundError(err):
		return nil
	case err != nil:
		return fmt.Errorf("failed to get latest attempt: %w", err)
	case latest.Completed:
		return ErrAttemptAlreadySubmitted
	}
	return nil
}

// evaluateSubmission checks that the answers line up with the quiz questions
// and re-derives correctness. The client's score must match.
func evaluateSubmission(quiz *models.Quiz, req *models.SubmitAttemptRequest) ([]models.AnswerRecord, error) {
	if req.TotalQuestions != quiz.QuestionCount() || len(req.Answers) != quiz.QuestionCount() {
		return nil, NewBusinessRuleError("question_count",
			"total_questions does not match the quiz",
			map[string]interface{}{"expected": quiz.QuestionCount(), "got": req.TotalQuestions, "answers": len(req.Answers)})
	}

	for i, a := range req.Answers {
		q := quiz.Questions[i]
		if a.QuestionID != q.ID {
			return nil, NewBusinessRuleError("answer_order",
				"answers must follow quiz question order",
				map[string]interface{}{"position": i, "expected_question_id": q.ID, "got": a.QuestionID})
		}
		if !q.HasOption(a.Selected) {
			return nil, NewBusinessRuleError("unknown_option",
				"selected option is not one of the question options",
				map[string]interface{}{"question_id": q.ID, "selected": a.Selected})
		}
	}

	answers := scoring.Evaluate(quiz.Questions, req.Selections())
	if score := scoring.Score(answers); score != req.Score {
		return nil, NewBusinessRuleError("score_mismatch",
			"score does not match the number of correct answers",
			map[string]interface{}{"expected": score, "got": req.Score})
	}
	return answers, nil
}

func (s *quizService) RecordAttempt(ctx context.Context, quizID uint, learnerID string, submission models.AttemptSubmission) (*models.Attempt, error) {
	if learnerID == "" {
		return nil, ErrLearnerRequired
	}

	s.logger.Info("Recording attempt",
		"quiz_id", quizID,
		"learner_id", learnerID,
		"score", submission.Score,
		"total_questions", submission.TotalQuestions)

	attempt, err := s.repo.Attempt().Submit(ctx, quizID, learnerID, &submission)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrAttemptAlreadySubmitted):
			return nil, ErrAttemptAlreadySubmitted
		case repositories.IsNotFoundError(err):
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to submit attempt: %w", err)
	}

	result := scoring.ResultFor(attempt.Score, attempt.TotalQuestions)
	submittedAt := time.Now()
	if attempt.CompletedAt != nil {
		submittedAt = *attempt.CompletedAt
	}
	s.publish(ctx, events.NewQuizEvent(events.EventAttemptSubmitted, events.AttemptSubmittedEvent{
		AttemptID:      attempt.ID,
		QuizID:         quizID,
		LearnerID:      learnerID,
		Score:          result.Score,
		TotalQuestions: result.Total,
		Percentage:     result.Percentage,
		Grade:          result.Grade,
		SubmittedAt:    submittedAt,
	}).ForLearner(learnerID))

	s.logger.Info("Attempt recorded",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"percentage", result.Percentage,
		"grade", result.Grade)
	return attempt, nil
}

// ===== RETAKE =====

func (s *quizService) Retake(ctx context.Context, quizID uint, learnerID string) (*models.Attempt, error) {
	op := s.opLogger.WithOperation(ctx, "retake", learnerID)

	attempt, err := s.retake(ctx, quizID, learnerID)
	op.LogResult(quizID, err)
	return attempt, err
}

func (s *quizService) retake(ctx context.Context, quizID uint, learnerID string) (*models.Attempt, error) {
	if learnerID == "" {
		return nil, ErrLearnerRequired
	}

	attempt, err := s.repo.Attempt().Retake(ctx, quizID, learnerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to start retake: %w", err)
	}

	s.publish(ctx, events.NewQuizEvent(events.EventAttemptRetakeStarted, events.AttemptRetakeStartedEvent{
		AttemptID: attempt.ID,
		QuizID:    quizID,
		LearnerID: learnerID,
		StartedAt: attempt.CreatedAt,
	}).ForLearner(learnerID))
	return attempt, nil
}

// publish never fails the caller; a lost event is logged.
func (s *quizService) publish(ctx context.Context, event *events.QuizEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish quiz event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}
