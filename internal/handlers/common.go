package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/quiz-session-service/internal/services"
	"github.com/SAP-F-2025/quiz-session-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps a page of results
type ListResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append(h.contextFields(c),
		"remote_addr", c.ClientIP(),
		"user_agent", c.Request.UserAgent(),
	)
	h.loggerFor(c).Info(message, append(fields, additionalFields...)...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.loggerFor(c).LogError(err, message, append(h.contextFields(c), additionalFields...)...)
}

func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	h.loggerFor(c).Info(message, append(h.contextFields(c), additionalFields...)...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.loggerFor(c).Warn(message, append(h.contextFields(c), additionalFields...)...)
}

// loggerFor prefers the request scoped logger set by utils.ContextLogger,
// which already carries the request id, method and path.
func (h *BaseHandler) loggerFor(c *gin.Context) utils.Logger {
	return utils.FromContext(c, h.logger)
}

func (h *BaseHandler) contextFields(c *gin.Context) []interface{} {
	if learnerID := c.GetString(learnerIDKey); learnerID != "" {
		return []interface{}{"learner_id", learnerID}
	}
	return []interface{}{}
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response and logs it
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}, additionalFields ...interface{}) {
	fields := append([]interface{}{"status_code", statusCode}, additionalFields...)
	h.LogInfo(c, message, fields...)

	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors onto HTTP statuses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	status, message, details := classifyServiceError(err)
	if details != nil {
		h.RespondWithError(c, status, message, err, details)
		return
	}
	h.RespondWithError(c, status, message, err)
}

func classifyServiceError(err error) (int, string, interface{}) {
	var fields services.ValidationErrors
	var rule *services.BusinessRuleError
	switch {
	case errors.As(err, &fields):
		return http.StatusBadRequest, "Validation failed", fields
	case errors.As(err, &rule):
		return http.StatusUnprocessableEntity, rule.Message, gin.H{"rule": rule.Rule, "context": rule.Context}
	case services.IsNotFound(err):
		return http.StatusNotFound, "Quiz not found", nil
	case errors.Is(err, services.ErrAttemptAlreadySubmitted):
		return http.StatusConflict, err.Error(), nil
	case services.IsConflict(err):
		return http.StatusConflict, "Request conflicts with current state", nil
	case services.IsValidation(err):
		return http.StatusBadRequest, "Invalid request", err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error", nil
	}
}
