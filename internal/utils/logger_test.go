package utils

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger() (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))), &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := bufferLogger()

	router := gin.New()
	router.Use(LoggerMiddleware(logger, "/health"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/quizzes/:id", func(c *gin.Context) {
		c.Set("learner_id", "learner-1")
		c.Status(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())

	req := httptest.NewRequest(http.MethodGet, "/quizzes/9", nil)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "/quizzes/9", lines[0]["path"])
	assert.Equal(t, float64(404), lines[0]["status_code"])
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, "learner-1", lines[0]["learner_id"])
}

func TestContextLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := bufferLogger()
	fallback, fallbackBuf := bufferLogger()

	router := gin.New()
	router.GET("/plain", func(c *gin.Context) {
		FromContext(c, fallback).Info("plain")
	})
	scoped := router.Group("/", ContextLogger(logger))
	scoped.GET("/scoped", func(c *gin.Context) {
		FromContext(c, fallback).Info("scoped")
	})

	req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
	req.Header.Set("X-Request-ID", "req-2")
	router.ServeHTTP(httptest.NewRecorder(), req)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))

	scopedLines := logLines(t, buf)
	require.Len(t, scopedLines, 1)
	assert.Equal(t, "req-2", scopedLines[0]["request_id"])
	assert.Equal(t, "/scoped", scopedLines[0]["path"])

	plainLines := logLines(t, fallbackBuf)
	require.Len(t, plainLines, 1)
	assert.Equal(t, "plain", plainLines[0]["msg"])
}

func TestLogRequestLevels(t *testing.T) {
	logger, buf := bufferLogger()

	logger.LogRequest(t.Context(), http.MethodGet, "/", 200, 0)
	logger.LogRequest(t.Context(), http.MethodGet, "/", 503, 0)

	lines := logLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "ERROR", lines[1]["level"])
}
