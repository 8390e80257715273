package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/SAP-F-2025/quiz-session-service/internal/scoring"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// ExportService renders a learner's attempt history for download.
type ExportService interface {
	ExportHistoryToExcel(ctx context.Context, quizID uint, learnerID string) ([]byte, error)
	ExportHistoryToCSV(ctx context.Context, quizID uint, learnerID string) ([]byte, error)
}

type exportService struct {
	quizzes QuizService
	logger  *slog.Logger
}

func NewExportService(quizzes QuizService, logger *slog.Logger) ExportService {
	return &exportService{
		quizzes: quizzes,
		logger:  logger,
	}
}

var historyHeaders = []string{
	"Attempt #", "Started", "Completed At", "Score", "Total", "Percentage", "Grade", "Status",
}

var answerHeaders = []string{
	"Attempt #", "Question", "Selected", "Correct Answer", "Result",
}

// ===== EXPORT OPERATIONS =====

func (s *exportService) ExportHistoryToExcel(ctx context.Context, quizID uint, learnerID string) ([]byte, error) {
	quiz, history, err := s.load(ctx, quizID, learnerID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "History"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := writeSheet(f, sheetName, historyHeaders, historyRows(history)); err != nil {
		return nil, err
	}

	answersSheet := "Answers"
	if _, err := f.NewSheet(answersSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeSheet(f, answersSheet, answerHeaders, answerRows(quiz, history)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported attempt history",
		"quiz_id", quizID,
		"learner_id", learnerID,
		"attempts", len(history),
		"format", "xlsx")
	return buf.Bytes(), nil
}

func (s *exportService) ExportHistoryToCSV(ctx context.Context, quizID uint, learnerID string) ([]byte, error) {
	_, history, err := s.load(ctx, quizID, learnerID)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(historyHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range historyRows(history) {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	s.logger.Info("Exported attempt history",
		"quiz_id", quizID,
		"learner_id", learnerID,
		"attempts", len(history),
		"format", "csv")
	return []byte(buf.String()), nil
}

// ===== HELPERS =====

func (s *exportService) load(ctx context.Context, quizID uint, learnerID string) (*models.Quiz, []models.Attempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.quizzes.LoadHistory(ctx, quizID, learnerID)
	if err != nil {
		return nil, nil, err
	}
	return quiz, history, nil
}

// historyRows numbers attempts oldest first; history arrives newest first.
func historyRows(history []models.Attempt) [][]interface{} {
	rows := make([][]interface{}, 0, len(history))
	for i, a := range history {
		result := scoring.ResultFor(a.Score, a.TotalQuestions)

		completedAt := ""
		if a.CompletedAt != nil {
			completedAt = a.CompletedAt.Format(exportTimeLayout)
		}
		status := "In progress"
		grade := ""
		if a.Completed {
			status = "Completed"
			grade = result.Grade
		}

		rows = append(rows, []interface{}{
			len(history) - i,
			a.CreatedAt.Format(exportTimeLayout),
			completedAt,
			a.Score,
			a.TotalQuestions,
			result.Percentage,
			grade,
			status,
		})
	}
	return rows
}

func answerRows(quiz *models.Quiz, history []models.Attempt) [][]interface{} {
	questions := make(map[uint]models.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions[q.ID] = q
	}

	var rows [][]interface{}
	for i, a := range history {
		for _, ans := range a.Answers {
			text, correctOption := "", ""
			if q, ok := questions[ans.QuestionID]; ok {
				text, correctOption = q.Text, q.CorrectOption
			}
			verdict := "Incorrect"
			if ans.Correct {
				verdict = "Correct"
			}
			rows = append(rows, []interface{}{len(history) - i, text, ans.Selected, correctOption, verdict})
		}
	}
	return rows
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write Excel header: %w", err)
	}
	for rowIndex, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, rowIndex+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write Excel row: %w", err)
		}
	}
	return nil
}
