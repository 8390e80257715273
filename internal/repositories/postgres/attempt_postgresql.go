package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-session-service/internal/cache"
	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/SAP-F-2025/quiz-session-service/internal/repositories"
	"gorm.io/gorm"
)

const DefaultHistoryTTL = 5 * time.Minute

type AttemptPostgreSQL struct {
	db         *gorm.DB
	cache      cache.CacheService
	historyTTL time.Duration
	logger     *slog.Logger
}

// NewAttemptPostgreSQL builds the attempt store. historyCache may be nil, in
// which case history is always read from the database.
func NewAttemptPostgreSQL(db *gorm.DB, historyCache cache.CacheService, historyTTL time.Duration, logger *slog.Logger) repositories.AttemptRepository {
	if historyTTL <= 0 {
		historyTTL = DefaultHistoryTTL
	}
	return &AttemptPostgreSQL{
		db:         db,
		cache:      historyCache,
		historyTTL: historyTTL,
		logger:     logger,
	}
}

func historyKey(quizID uint, learnerID string) string {
	return fmt.Sprintf("history:%d:%s", quizID, learnerID)
}

// GetHistory returns the learner's attempts for a quiz, newest first.
func (a *AttemptPostgreSQL) GetHistory(ctx context.Context, quizID uint, learnerID string) ([]models.Attempt, error) {
	load := func() (interface{}, error) {
		attempts := make([]models.Attempt, 0)
		err := a.db.WithContext(ctx).
			Where("quiz_id = ? AND learner_id = ?", quizID, learnerID).
			Order("created_at DESC").
			Order("id DESC").
			Find(&attempts).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get attempt history: %w", err)
		}
		return attempts, nil
	}

	if a.cache == nil {
		v, err := load()
		if err != nil {
			return nil, err
		}
		return v.([]models.Attempt), nil
	}

	var attempts []models.Attempt
	if err := a.cache.CacheOrExecute(ctx, historyKey(quizID, learnerID), &attempts, a.historyTTL, load); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) GetLatest(ctx context.Context, quizID uint, learnerID string) (*models.Attempt, error) {
	attempt, err := latestAttempt(a.db.WithContext(ctx), quizID, learnerID)
	if err != nil {
		return nil, wrapNotFound(err, "latest attempt for quiz", quizID)
	}
	return attempt, nil
}

func (a *AttemptPostgreSQL) Submit(ctx context.Context, quizID uint, learnerID string, submission *models.AttemptSubmission) (*models.Attempt, error) {
	var stored models.Attempt

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureQuiz(tx, quizID); err != nil {
			return err
		}

		latest, err := latestAttempt(tx, quizID, learnerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to get latest attempt: %w", err)
		}

		now := time.Now()
		switch {
		case latest != nil && latest.Completed:
			return repositories.ErrAttemptAlreadySubmitted
		case latest != nil:
			latest.Answers = submission.Answers
			latest.Score = submission.Score
			latest.TotalQuestions = submission.TotalQuestions
			latest.Completed = true
			latest.CompletedAt = &now
			if err := tx.Save(latest).Error; err != nil {
				return fmt.Errorf("failed to finalize attempt: %w", err)
			}
			stored = *latest
		default:
			stored = models.Attempt{
				QuizID:         quizID,
				LearnerID:      learnerID,
				Answers:        submission.Answers,
				Score:          submission.Score,
				TotalQuestions: submission.TotalQuestions,
				Completed:      true,
				CompletedAt:    &now,
			}
			if err := tx.Create(&stored).Error; err != nil {
				return fmt.Errorf("failed to create attempt: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.SafeInvalidate(ctx, a.cache, a.logger, historyKey(quizID, learnerID))
	return &stored, nil
}

func (a *AttemptPostgreSQL) Retake(ctx context.Context, quizID uint, learnerID string) (*models.Attempt, error) {
	var attempt models.Attempt

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureQuiz(tx, quizID); err != nil {
			return err
		}

		latest, err := latestAttempt(tx, quizID, learnerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to get latest attempt: %w", err)
		}
		if latest != nil && !latest.Completed {
			attempt = *latest
			return nil
		}

		attempt = models.Attempt{
			QuizID:    quizID,
			LearnerID: learnerID,
			Answers:   []models.AnswerRecord{},
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return fmt.Errorf("failed to open attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.SafeInvalidate(ctx, a.cache, a.logger, historyKey(quizID, learnerID))
	return &attempt, nil
}

func latestAttempt(db *gorm.DB, quizID uint, learnerID string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := db.Where("quiz_id = ? AND learner_id = ?", quizID, learnerID).
		Order("created_at DESC").
		Order("id DESC").
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func ensureQuiz(tx *gorm.DB, quizID uint) error {
	var count int64
	if err := tx.Model(&models.Quiz{}).Where("id = ?", quizID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check quiz: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("quiz %d: %w", quizID, repositories.ErrNotFound)
	}
	return nil
}
