package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-session-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	MaterialID  *uint      `json:"material_id"`
	CreatedFrom *time.Time `json:"created_from"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

// QuizRepository reads and creates quizzes. Quizzes are read-only once created.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
}

// AttemptRepository is the attempt store. History is always newest first.
type AttemptRepository interface {
	GetHistory(ctx context.Context, quizID uint, learnerID string) ([]models.Attempt, error)
	GetLatest(ctx context.Context, quizID uint, learnerID string) (*models.Attempt, error)

	// Submit finalizes the learner's open attempt, or records a new completed
	// one when none is open. It fails with ErrAttemptAlreadySubmitted when the
	// latest attempt is already completed.
	Submit(ctx context.Context, quizID uint, learnerID string, submission *models.AttemptSubmission) (*models.Attempt, error)

	// Retake opens a fresh attempt, returning the already open one if any.
	Retake(ctx context.Context, quizID uint, learnerID string) (*models.Attempt, error)
}

// Repository groups the repositories used by the service layer.
type Repository interface {
	Quiz() QuizRepository
	Attempt() AttemptRepository
}
