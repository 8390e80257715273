package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/SAP-F-2025/quiz-session-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-session-service/internal/services"
	"github.com/SAP-F-2025/quiz-session-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	exportService services.ExportService
}

func NewQuizHandler(quizService services.QuizService, exportService services.ExportService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		exportService: exportService,
	}
}

// CreateQuiz stores a quiz with its ordered questions
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body models.CreateQuizRequest true "Quiz data"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req models.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Creating quiz", "title", req.Title)

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// ListQuizzes returns quizzes newest first
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// @Summary List quizzes
// @Tags quizzes
// @Produce json
// @Param material_id query int false "Filter by study material"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} ListResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	page := max(parseIntQuery(c, "page", 1), 1)
	size := parseIntQuery(c, "size", defaultPageSize)
	if size <= 0 {
		size = defaultPageSize
	}
	size = min(size, maxPageSize)

	filters := repositories.QuizFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if materialIDStr := c.Query("material_id"); materialIDStr != "" {
		if materialID, err := strconv.ParseUint(materialIDStr, 10, 32); err == nil {
			id := uint(materialID)
			filters.MaterialID = &id
		}
	}

	quizzes, total, err := h.quizService.ListQuizzes(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Items:  quizzes,
		Total:  total,
		Limit:  size,
		Offset: filters.Offset,
	})
}

// GetQuiz returns a quiz with its questions in order
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// GetHistory returns the learner's attempts, newest first
// @Summary Get attempt history
// @Tags attempts
// @Produce json
// @Param id path int true "Quiz ID"
// @Param X-Learner-ID header string true "Learner ID"
// @Success 200 {object} services.HistoryResponse
// @Router /quizzes/{id}/history [get]
func (h *QuizHandler) GetHistory(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	history, err := h.quizService.GetHistory(c.Request.Context(), id, learnerID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// ExportHistory downloads the learner's history as xlsx, or csv with ?format=csv
// @Summary Export attempt history
// @Tags attempts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Quiz ID"
// @Param format query string false "xlsx or csv"
// @Router /quizzes/{id}/history/export [get]
func (h *QuizHandler) ExportHistory(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "xlsx":
		data, err = h.exportService.ExportHistoryToExcel(c.Request.Context(), id, learnerID(c))
		contentType = xlsxContentType
	case "csv":
		data, err = h.exportService.ExportHistoryToCSV(c.Request.Context(), id, learnerID(c))
		contentType = "text/csv"
	default:
		h.RespondWithError(c, http.StatusBadRequest, "Unsupported export format", nil, format)
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz-%d-history-%s.%s", id, time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// SubmitResults records a finished attempt
// @Summary Submit quiz results
// @Tags attempts
// @Accept json
// @Produce json
// @Param X-Learner-ID header string true "Learner ID"
// @Param result body models.SubmitAttemptRequest true "Attempt result"
// @Success 201 {object} services.SubmitResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /quiz-results [post]
func (h *QuizHandler) SubmitResults(c *gin.Context) {
	var req models.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Submitting quiz results", "quiz_id", req.QuizID, "score", req.Score)

	resp, err := h.quizService.SubmitResults(c.Request.Context(), learnerID(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Quiz results saved", resp, "attempt_id", resp.AttemptID)
}

// Retake opens a new attempt for the quiz
// @Summary Retake quiz
// @Tags attempts
// @Produce json
// @Param id path int true "Quiz ID"
// @Param X-Learner-ID header string true "Learner ID"
// @Success 201 {object} models.Attempt
// @Router /quizzes/{id}/retake [post]
func (h *QuizHandler) Retake(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	attempt, err := h.quizService.Retake(c.Request.Context(), id, learnerID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Retake started", attempt, "attempt_id", attempt.ID)
}
