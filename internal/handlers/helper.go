package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quiz-session-service/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	// LearnerIDHeader identifies the learner on learner-scoped routes
	LearnerIDHeader = "X-Learner-ID"

	learnerIDKey = "learner_id"
)

// RequireLearner rejects requests without a learner header and stores the
// learner id in the gin context.
func RequireLearner() gin.HandlerFunc {
	return func(c *gin.Context) {
		learnerID := strings.TrimSpace(c.GetHeader(LearnerIDHeader))
		if learnerID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Message: "Missing " + LearnerIDHeader + " header",
			})
			return
		}
		c.Set(learnerIDKey, learnerID)
		c.Next()
	}
}

func learnerID(c *gin.Context) string {
	return c.GetString(learnerIDKey)
}

// ParseUintParam parses a positive id path parameter. It writes a 400 and
// returns 0 when the value is not usable.
func ParseUintParam(c *gin.Context, param string) uint {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		details := "ID must be a positive integer"
		if err != nil {
			details = err.Error()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: details,
		})
		return 0
	}
	return uint(id)
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// RequestContext copies X-Request-ID into the request context so service
// logs can be correlated with the access log.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
			ctx := context.WithValue(c.Request.Context(), services.RequestIDKey, requestID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
