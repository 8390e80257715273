package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/SAP-F-2025/quiz-session-service/internal/repositories"
)

// ===== REPOSITORY MOCKS =====

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Quiz), args.Get(1).(int64), args.Error(2)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) GetHistory(ctx context.Context, quizID uint, learnerID string) ([]models.Attempt, error) {
	args := m.Called(ctx, quizID, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetLatest(ctx context.Context, quizID uint, learnerID string) (*models.Attempt, error) {
	args := m.Called(ctx, quizID, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) Submit(ctx context.Context, quizID uint, learnerID string, submission *models.AttemptSubmission) (*models.Attempt, error) {
	args := m.Called(ctx, quizID, learnerID, submission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) Retake(ctx context.Context, quizID uint, learnerID string) (*models.Attempt, error) {
	args := m.Called(ctx, quizID, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

type mockRepository struct {
	quizzes  *MockQuizRepository
	attempts *MockAttemptRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		quizzes:  &MockQuizRepository{},
		attempts: &MockAttemptRepository{},
	}
}

func (r *mockRepository) Quiz() repositories.QuizRepository       { return r.quizzes }
func (r *mockRepository) Attempt() repositories.AttemptRepository { return r.attempts }

// ===== SERVICE MOCK =====

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) CreateQuiz(ctx context.Context, req *models.CreateQuizRequest) (*models.Quiz, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizService) GetQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizService) ListQuizzes(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizService) LoadHistory(ctx context.Context, quizID uint, learnerID string) ([]models.Attempt, error) {
	args := m.Called(ctx, quizID, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}

func (m *MockQuizService) GetHistory(ctx context.Context, quizID uint, learnerID string) (*HistoryResponse, error) {
	args := m.Called(ctx, quizID, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*HistoryResponse), args.Error(1)
}

func (m *MockQuizService) SubmitResults(ctx context.Context, learnerID string, req *models.SubmitAttemptRequest) (*SubmitResponse, error) {
	args := m.Called(ctx, learnerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubmitResponse), args.Error(1)
}

func (m *MockQuizService) RecordAttempt(ctx context.Context, quizID uint, learnerID string, submission models.AttemptSubmission) (*models.Attempt, error) {
	args := m.Called(ctx, quizID, learnerID, submission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockQuizService) Retake(ctx context.Context, quizID uint, learnerID string) (*models.Attempt, error) {
	args := m.Called(ctx, quizID, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

// ===== FIXTURES =====

func sampleQuiz() *models.Quiz {
	return &models.Quiz{
		ID:    7,
		Title: "Go basics",
		Questions: []models.Question{
			{ID: 11, QuizID: 7, Position: 0, Text: "2+2?", Options: []string{"3", "4"}, CorrectOption: "4"},
			{ID: 12, QuizID: 7, Position: 1, Text: "Go keyword for goroutines?", Options: []string{"go", "async"}, CorrectOption: "go"},
			{ID: 13, QuizID: 7, Position: 2, Text: "Zero value of int?", Options: []string{"0", "nil"}, CorrectOption: "0"},
		},
	}
}
