package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/quiz-session-service/internal/events"
	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/SAP-F-2025/quiz-session-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-session-service/internal/services"
	"github.com/SAP-F-2025/quiz-session-service/internal/session"
	"github.com/SAP-F-2025/quiz-session-service/internal/validator"
)

const (
	testChatID = int64(500)
	testUserID = int64(42)
)

// fakeSender records everything the bot sends.
type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return m.Text
	case tgbotapi.EditMessageTextConfig:
		return m.Text
	}
	t.Fatalf("unexpected chattable %T", f.sent[len(f.sent)-1])
	return ""
}

func (f *fakeSender) lastCallbackText() string {
	if len(f.requests) == 0 {
		return ""
	}
	if cb, ok := f.requests[len(f.requests)-1].(tgbotapi.CallbackConfig); ok {
		return cb.Text
	}
	return ""
}

func newTestBot(t *testing.T) (*Bot, *fakeSender, *models.Quiz) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, postgres.Migrate(db))

	slogger := slog.New(slog.DiscardHandler)
	repo := postgres.NewRepository(db, nil, 0, slogger)
	manager := services.NewServiceManager(repo, events.NewMockEventPublisher(slogger), slogger, validator.New())

	quiz, err := manager.Quiz().CreateQuiz(context.Background(), &models.CreateQuizRequest{
		Title: "Planets",
		Questions: []models.CreateQuestionRequest{
			{Text: "Largest planet?", Options: []string{"Mars", "Jupiter"}, CorrectOption: "Jupiter"},
			{Text: "Closest to the sun?", Options: []string{"Mercury", "Venus"}, CorrectOption: "Mercury"},
			{Text: "Red planet?", Options: []string{"Mars", "Saturn"}, CorrectOption: "Mars"},
		},
	})
	require.NoError(t, err)

	sender := &fakeSender{}
	return NewBot(sender, manager, slogger), sender, quiz
}

func command(text string) tgbotapi.Update {
	cmd := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Text:      text,
		Chat:      &tgbotapi.Chat{ID: testChatID},
		From:      &tgbotapi.User{ID: testUserID},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func tap(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: testUserID},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: testChatID}},
		Data:    data,
	}}
}

func TestBot_Help(t *testing.T) {
	bot, sender, _ := newTestBot(t)

	bot.HandleUpdate(context.Background(), command("/start"))

	assert.Contains(t, sender.lastText(t), "/quiz <id>")
}

func TestBot_QuizUsageAndNotFound(t *testing.T) {
	bot, sender, _ := newTestBot(t)
	ctx := context.Background()

	bot.HandleUpdate(ctx, command("/quiz"))
	assert.Contains(t, sender.lastText(t), "Usage")

	bot.HandleUpdate(ctx, command("/quiz 999"))
	assert.Equal(t, "Quiz not found.", sender.lastText(t))
}

func TestBot_FullAttempt(t *testing.T) {
	bot, sender, quiz := newTestBot(t)
	ctx := context.Background()

	bot.HandleUpdate(ctx, command(fmt.Sprintf("/quiz %d", quiz.ID)))
	assert.Contains(t, sender.lastText(t), "Question 1/3")

	t.Run("next without selection is refused", func(t *testing.T) {
		bot.HandleUpdate(ctx, tap(cbNext))
		assert.Equal(t, "Please choose an answer first.", sender.lastCallbackText())
		assert.Contains(t, sender.lastText(t), "Question 1/3")
	})

	bot.HandleUpdate(ctx, tap("opt:1")) // Jupiter
	assert.Contains(t, sender.lastText(t), "Question 1/3")
	bot.HandleUpdate(ctx, tap(cbNext))
	bot.HandleUpdate(ctx, tap("opt:1")) // Venus, wrong
	bot.HandleUpdate(ctx, tap(cbNext))

	t.Run("back restores the previous choice", func(t *testing.T) {
		bot.HandleUpdate(ctx, tap(cbBack))
		assert.Contains(t, sender.lastText(t), "Question 2/3")
		assert.Equal(t, "Venus", bot.sessions[testChatID].SelectedOption())
		bot.HandleUpdate(ctx, tap(cbNext))
	})

	bot.HandleUpdate(ctx, tap("opt:0")) // Mars
	bot.HandleUpdate(ctx, tap(cbNext))

	result := sender.lastText(t)
	assert.Contains(t, result, "Score: 2/3 (67%)")
	assert.Contains(t, result, "Grade: D")

	bot.HandleUpdate(ctx, tap(cbReview))
	review := sender.lastText(t)
	assert.Contains(t, review, "Your answer: Venus")
	assert.Contains(t, review, "Correct answer: Mercury")

	bot.HandleUpdate(ctx, tap(cbSummary))
	assert.Contains(t, sender.lastText(t), "Grade: D")

	t.Run("reopening shows the stored result", func(t *testing.T) {
		bot.HandleUpdate(ctx, command(fmt.Sprintf("/quiz %d", quiz.ID)))
		assert.Contains(t, sender.lastText(t), "Score: 2/3 (67%)")
	})

	t.Run("retake starts over and keeps history", func(t *testing.T) {
		bot.HandleUpdate(ctx, tap(cbRetake))
		assert.Contains(t, sender.lastText(t), "Question 1/3")

		for _, opt := range []string{"opt:1", "opt:0", "opt:0"} {
			bot.HandleUpdate(ctx, tap(opt))
			bot.HandleUpdate(ctx, tap(cbNext))
		}
		result := sender.lastText(t)
		assert.Contains(t, result, "Score: 3/3 (100%)")
		assert.Contains(t, result, "#1: 2/3 (67%) D")
	})
}

func TestBot_RetakeFromReview(t *testing.T) {
	bot, sender, quiz := newTestBot(t)
	ctx := context.Background()

	bot.HandleUpdate(ctx, command(fmt.Sprintf("/quiz %d", quiz.ID)))
	for _, opt := range []string{"opt:1", "opt:0", "opt:0"} {
		bot.HandleUpdate(ctx, tap(opt))
		bot.HandleUpdate(ctx, tap(cbNext))
	}
	require.Equal(t, session.PhaseCompleted, bot.sessions[testChatID].Phase())

	bot.HandleUpdate(ctx, tap(cbReview))
	require.Equal(t, session.PhaseReviewing, bot.sessions[testChatID].Phase())

	bot.HandleUpdate(ctx, tap(cbRetake))
	assert.NotEqual(t, "That action is not available right now.", sender.lastCallbackText())
	assert.Equal(t, session.PhaseAnswering, bot.sessions[testChatID].Phase())
	assert.Equal(t, 0, bot.sessions[testChatID].CurrentIndex())
	assert.Contains(t, sender.lastText(t), "Question 1/3")
	assert.Len(t, bot.sessions[testChatID].History(), 2)
}

func TestBot_CallbackWithoutSession(t *testing.T) {
	bot, sender, _ := newTestBot(t)

	bot.HandleUpdate(context.Background(), tap(cbNext))

	assert.Contains(t, sender.lastCallbackText(), "Session expired")
	assert.Empty(t, sender.sent)
}

func TestCallbackError(t *testing.T) {
	assert.Contains(t, callbackError(session.NewOperationError(session.ErrSubmissionFailure, 1, errors.New("x"))), "Retry")
	assert.Contains(t, callbackError(session.ErrStaleAttempt), "cannot be reviewed")
	assert.Equal(t, "Something went wrong.", callbackError(errors.New("x")))
}
