// Package telegram drives quiz sessions from a Telegram chat. Each chat owns
// one session engine; updates are handled one at a time.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/SAP-F-2025/quiz-session-service/internal/services"
	"github.com/SAP-F-2025/quiz-session-service/internal/session"
)

const (
	cmdStart   = "start"
	cmdHelp    = "help"
	cmdQuiz    = "quiz"
	cmdResults = "results"
)

// Callback data sent by the inline keyboards.
const (
	cbOptionPrefix = "opt:"
	cbNext         = "next"
	cbBack         = "back"
	cbReview       = "review"
	cbSummary      = "summary"
	cbRetake       = "retake"
	cbRetry        = "retry"
)

const helpText = `Commands:
/quiz <id> - start or resume a quiz
/results <id> - show your latest result for a quiz
/help - show this message`

// Sender is the part of the Bot API the bot needs. *tgbotapi.BotAPI
// satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api      Sender
	services services.ServiceManager
	logger   *slog.Logger

	// sessions is only touched from the update loop
	sessions map[int64]*session.Engine
}

func NewBot(api Sender, manager services.ServiceManager, logger *slog.Logger) *Bot {
	return &Bot{
		api:      api,
		services: manager,
		logger:   logger,
		sessions: make(map[int64]*session.Engine),
	}
}

// Run handles updates until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	b.logger.Info("Starting bot update loop")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Bot update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes a single update. It must not be called concurrently.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// ===== COMMANDS =====

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case cmdStart, cmdHelp:
		b.sendText(chatID, helpText)
	case cmdQuiz:
		b.openQuiz(ctx, message, services.LoadOptions{})
	case cmdResults:
		b.openQuiz(ctx, message, services.LoadOptions{ShowResults: true})
	default:
		b.sendText(chatID, "Unknown command.\n\n"+helpText)
	}
}

func (b *Bot) openQuiz(ctx context.Context, message *tgbotapi.Message, opts services.LoadOptions) {
	chatID := message.Chat.ID

	quizID, err := strconv.ParseUint(strings.TrimSpace(message.CommandArguments()), 10, 32)
	if err != nil || quizID == 0 {
		b.sendText(chatID, fmt.Sprintf("Usage: /%s <quiz id>", message.Command()))
		return
	}
	if message.From == nil {
		return
	}

	coordinator := b.services.Coordinator(learnerID(message.From))
	engine, err := coordinator.LoadSession(ctx, uint(quizID), opts)
	if err != nil {
		b.logger.Error("Failed to load quiz session", "chat_id", chatID, "quiz_id", quizID, "error", err)
		if errors.Is(err, services.ErrQuizNotFound) {
			b.sendText(chatID, "Quiz not found.")
			return
		}
		b.sendText(chatID, "Could not load the quiz. Please try again.")
		return
	}

	b.sessions[chatID] = engine
	b.send(chatID, render(engine))
}

// ===== CALLBACKS =====

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	engine, ok := b.sessions[chatID]
	if !ok {
		b.answerCallback(callback.ID, "Session expired. Use /quiz <id> to start again.")
		return
	}

	if err := b.apply(ctx, engine, callback.Data); err != nil {
		b.logger.Warn("Session action failed",
			"chat_id", chatID,
			"action", callback.Data,
			"phase", engine.Phase(),
			"error", err)
		b.answerCallback(callback.ID, callbackError(err))
	} else {
		b.answerCallback(callback.ID, "")
	}

	b.edit(chatID, messageID, render(engine))
}

func (b *Bot) apply(ctx context.Context, engine *session.Engine, data string) error {
	switch {
	case strings.HasPrefix(data, cbOptionPrefix):
		q := engine.CurrentQuestion()
		if q == nil {
			return engine.SelectOption("")
		}
		i, err := strconv.Atoi(strings.TrimPrefix(data, cbOptionPrefix))
		if err != nil || i < 0 || i >= len(q.Options) {
			return fmt.Errorf("unknown option %q", data)
		}
		return engine.SelectOption(q.Options[i])
	case data == cbNext:
		return engine.Advance(ctx)
	case data == cbBack:
		return engine.GoBack()
	case data == cbRetry:
		return engine.RetrySubmit(ctx)
	case data == cbReview, data == cbSummary:
		return engine.ToggleReview()
	case data == cbRetake:
		// Retake is offered on the review screen too; leave review first.
		if engine.Phase() == session.PhaseReviewing {
			if err := engine.ToggleReview(); err != nil {
				return err
			}
		}
		if err := engine.Retake(ctx); err != nil {
			return err
		}
		return engine.Start(nil)
	}
	return fmt.Errorf("unknown action %q", data)
}

func callbackError(err error) string {
	var transition *session.TransitionError
	switch {
	case errors.Is(err, session.ErrStaleAttempt):
		return "This attempt no longer matches the quiz and cannot be reviewed."
	case errors.Is(err, session.ErrSubmissionFailure):
		return "Could not save your results. Tap Retry."
	case errors.Is(err, session.ErrRetakeFailure):
		return "Could not start a retake. Please try again."
	case errors.As(err, &transition) && transition.Op == "advance" && transition.Phase == session.PhaseAnswering:
		return "Please choose an answer first."
	case session.IsInvalidTransition(err):
		return "That action is not available right now."
	}
	return "Something went wrong."
}

// ===== TRANSPORT =====

func learnerID(user *tgbotapi.User) string {
	return "tg-" + strconv.FormatInt(user.ID, 10)
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) send(chatID int64, v view) {
	msg := tgbotapi.NewMessage(chatID, v.text)
	if v.keyboard != nil {
		msg.ReplyMarkup = *v.keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, v view) {
	var edit tgbotapi.EditMessageTextConfig
	if v.keyboard != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, v.text, *v.keyboard)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, v.text)
	}
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Error("Failed to answer callback", "error", err)
	}
}
