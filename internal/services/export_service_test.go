package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/quiz-session-service/internal/models"
)

func exportHistory() []models.Attempt {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := created.Add(5 * time.Minute)
	return []models.Attempt{
		{ID: 2, QuizID: 7, CreatedAt: created.Add(time.Hour)},
		{ID: 1, QuizID: 7, Score: 2, TotalQuestions: 3, Completed: true, CreatedAt: created, CompletedAt: &completed, Answers: fullAnswers(true, false, true)},
	}
}

func newTestExportService() (ExportService, *MockQuizService) {
	quizzes := &MockQuizService{}
	quizzes.On("GetQuiz", context.Background(), uint(7)).Return(sampleQuiz(), nil)
	quizzes.On("LoadHistory", context.Background(), uint(7), "learner-1").Return(exportHistory(), nil)
	return NewExportService(quizzes, slog.New(slog.DiscardHandler)), quizzes
}

func TestExportService_Excel(t *testing.T) {
	svc, _ := newTestExportService()

	data, err := svc.ExportHistoryToExcel(context.Background(), 7, "learner-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"History", "Answers"}, f.GetSheetList())

	rows, err := f.GetRows("History")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, historyHeaders, rows[0])
	assert.Equal(t, []string{"2", "2025-03-01 11:00:00", "", "0", "0", "0", "", "In progress"}, rows[1])
	assert.Equal(t, []string{"1", "2025-03-01 10:00:00", "2025-03-01 10:05:00", "2", "3", "67", "D", "Completed"}, rows[2])

	answers, err := f.GetRows("Answers")
	require.NoError(t, err)
	require.Len(t, answers, 4)
	assert.Equal(t, []string{"1", "Go keyword for goroutines?", "async", "go", "Incorrect"}, answers[2])
}

func TestExportService_CSV(t *testing.T) {
	svc, _ := newTestExportService()

	data, err := svc.ExportHistoryToCSV(context.Background(), 7, "learner-1")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Attempt #", records[0][0])
	assert.Equal(t, "D", records[2][6])
}

func TestExportService_PropagatesNotFound(t *testing.T) {
	quizzes := &MockQuizService{}
	quizzes.On("GetQuiz", context.Background(), uint(8)).Return(nil, ErrQuizNotFound)
	svc := NewExportService(quizzes, slog.New(slog.DiscardHandler))

	_, err := svc.ExportHistoryToExcel(context.Background(), 8, "learner-1")

	assert.ErrorIs(t, err, ErrQuizNotFound)
}
