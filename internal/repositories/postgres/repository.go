package postgres

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-session-service/internal/cache"
	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/SAP-F-2025/quiz-session-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	quiz    repositories.QuizRepository
	attempt repositories.AttemptRepository
}

// NewRepository wires the gorm repositories. The implementation only uses
// portable SQL, so it runs on any dialector InitDatabase can open.
func NewRepository(db *gorm.DB, historyCache cache.CacheService, historyTTL time.Duration, logger *slog.Logger) repositories.Repository {
	return &repository{
		quiz:    NewQuizPostgreSQL(db),
		attempt: NewAttemptPostgreSQL(db, historyCache, historyTTL, logger),
	}
}

func (r *repository) Quiz() repositories.QuizRepository {
	return r.quiz
}

func (r *repository) Attempt() repositories.AttemptRepository {
	return r.attempt
}

// Migrate creates or updates the tables used by the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Quiz{}, &models.Question{}, &models.Attempt{})
}
