package services

import (
	"log/slog"

	"github.com/SAP-F-2025/quiz-session-service/internal/events"
	"github.com/SAP-F-2025/quiz-session-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-session-service/internal/validator"
)

// ServiceManager groups the services shared by the HTTP and bot front ends.
type ServiceManager interface {
	Quiz() QuizService
	Export() ExportService
	// Coordinator binds a learner to the quiz service for one session.
	Coordinator(learnerID string) *AttemptHistoryCoordinator
}

type serviceManager struct {
	quiz   QuizService
	export ExportService
	logger *slog.Logger
}

func NewServiceManager(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ServiceManager {
	quiz := NewQuizService(repo, publisher, logger, validator)
	return &serviceManager{
		quiz:   quiz,
		export: NewExportService(quiz, logger),
		logger: logger,
	}
}

func (m *serviceManager) Quiz() QuizService {
	return m.quiz
}

func (m *serviceManager) Export() ExportService {
	return m.export
}

func (m *serviceManager) Coordinator(learnerID string) *AttemptHistoryCoordinator {
	return NewAttemptHistoryCoordinator(m.quiz, learnerID, m.logger)
}
