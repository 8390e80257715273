package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/SAP-F-2025/quiz-session-service/internal/session"
)

// LoadOptions controls how LoadSession picks the attempt to show.
type LoadOptions struct {
	// ShowResults opens the newest completed attempt even when a newer
	// attempt is still open.
	ShowResults bool
}

// AttemptHistoryCoordinator binds one learner to the quiz service. It loads
// sessions and acts as the session.AttemptStore for the engines it creates.
type AttemptHistoryCoordinator struct {
	quizzes   QuizService
	learnerID string
	logger    *slog.Logger
}

var _ session.AttemptStore = (*AttemptHistoryCoordinator)(nil)

func NewAttemptHistoryCoordinator(quizzes QuizService, learnerID string, logger *slog.Logger) *AttemptHistoryCoordinator {
	return &AttemptHistoryCoordinator{
		quizzes:   quizzes,
		learnerID: learnerID,
		logger:    logger.With("learner_id", learnerID),
	}
}

// LoadSession fetches the quiz and the learner's history concurrently and
// starts an engine on them. Both fetches must succeed.
func (c *AttemptHistoryCoordinator) LoadSession(ctx context.Context, quizID uint, opts LoadOptions) (*session.Engine, error) {
	c.logger.Info("Loading quiz session", "quiz_id", quizID, "show_results", opts.ShowResults)

	var (
		quiz    *models.Quiz
		history []models.Attempt
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := c.quizzes.GetQuiz(gctx, quizID)
		if err != nil {
			return fmt.Errorf("failed to fetch quiz: %w", err)
		}
		quiz = q
		return nil
	})
	g.Go(func() error {
		h, err := c.quizzes.LoadHistory(gctx, quizID, c.learnerID)
		if err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}
		history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		c.logger.Error("Failed to load quiz session", "quiz_id", quizID, "error", err)
		return nil, session.NewOperationError(session.ErrLoadFailure, quizID, err)
	}

	engine := session.NewEngine(quiz, c,
		session.WithHistory(history),
		session.WithLogger(c.logger))

	if err := engine.Start(selectPrior(history, opts)); err != nil {
		return nil, session.NewOperationError(session.ErrLoadFailure, quizID, err)
	}
	return engine, nil
}

// selectPrior returns the attempt the session should open on, or nil to start
// answering. history is newest first.
func selectPrior(history []models.Attempt, opts LoadOptions) *models.Attempt {
	if len(history) == 0 {
		return nil
	}
	if history[0].Completed {
		return &history[0]
	}
	if opts.ShowResults {
		for i := range history {
			if history[i].Completed {
				return &history[i]
			}
		}
	}
	return nil
}

// ===== session.AttemptStore =====

func (c *AttemptHistoryCoordinator) SubmitAttempt(ctx context.Context, quizID uint, submission models.AttemptSubmission) (*models.Attempt, []models.Attempt, error) {
	attempt, err := c.quizzes.RecordAttempt(ctx, quizID, c.learnerID, submission)
	if err != nil {
		return nil, nil, err
	}

	history, err := c.quizzes.LoadHistory(ctx, quizID, c.learnerID)
	if err != nil {
		c.logger.Warn("Attempt stored but history reload failed",
			"quiz_id", quizID,
			"attempt_id", attempt.ID,
			"error", err)
		return attempt, nil, nil
	}
	return attempt, history, nil
}

func (c *AttemptHistoryCoordinator) RetakeQuiz(ctx context.Context, quizID uint) ([]models.Attempt, error) {
	if _, err := c.quizzes.Retake(ctx, quizID, c.learnerID); err != nil {
		return nil, err
	}

	history, err := c.quizzes.LoadHistory(ctx, quizID, c.learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload history: %w", err)
	}
	return history, nil
}
