package services

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type contextKey string

// RequestIDKey carries the X-Request-ID header through request contexts.
const RequestIDKey contextKey = "request_id"

// ServiceLogger writes one outcome line per service operation.
type ServiceLogger struct {
	logger *slog.Logger
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
	}
}

// outcome maps an operation error to a log level and a status label. Caller
// mistakes are warnings; a missing quiz is informational.
func outcome(err error) (slog.Level, string) {
	switch {
	case err == nil:
		return slog.LevelInfo, "success"
	case IsValidation(err), IsBusinessRule(err):
		return slog.LevelWarn, "rejected"
	case IsConflict(err):
		return slog.LevelWarn, "conflict"
	case IsNotFound(err):
		return slog.LevelInfo, "not_found"
	default:
		return slog.LevelError, "error"
	}
}

// Operation times a single call started by WithOperation.
type Operation struct {
	parent    *ServiceLogger
	ctx       context.Context
	name      string
	learnerID string
	started   time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, name, learnerID string) *Operation {
	return &Operation{parent: l, ctx: ctx, name: name, learnerID: learnerID, started: time.Now()}
}

// LogResult logs how the operation ended. Validation failures also list up to
// five offending fields.
func (op *Operation) LogResult(quizID uint, err error) {
	level, status := outcome(err)

	attrs := []slog.Attr{
		slog.String("operation", op.name),
		slog.String("status", status),
		slog.String("learner_id", op.learnerID),
		slog.Uint64("quiz_id", uint64(quizID)),
		slog.Duration("duration", time.Since(op.started)),
	}
	if requestID, ok := op.ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var fields ValidationErrors
		var rule *BusinessRuleError
		switch {
		case errors.As(err, &fields):
			attrs = append(attrs, slog.Any("fields", fieldSummary(fields, 5)))
		case errors.As(err, &rule):
			attrs = append(attrs, slog.String("rule", rule.Rule))
		}
	}

	op.parent.logger.LogAttrs(op.ctx, level, op.name+" "+status, attrs...)
}

func fieldSummary(errs ValidationErrors, limit int) []string {
	out := make([]string, 0, min(len(errs), limit))
	for _, e := range errs[:min(len(errs), limit)] {
		out = append(out, e.Field+": "+e.Message)
	}
	return out
}
