package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/SAP-F-2025/quiz-session-service/internal/session"
)

type view struct {
	text     string
	keyboard *tgbotapi.InlineKeyboardMarkup
}

func render(e *session.Engine) view {
	switch e.Phase() {
	case session.PhaseAnswering:
		return renderQuestion(e)
	case session.PhaseSubmitting:
		return renderSubmitting(e)
	case session.PhaseCompleted:
		return renderResult(e)
	case session.PhaseReviewing:
		return renderReview(e)
	}
	return view{text: "Use /quiz <id> to start."}
}

func renderQuestion(e *session.Engine) view {
	q := e.CurrentQuestion()
	text := fmt.Sprintf("%s\n\nQuestion %d/%d\n%s", e.Quiz().Title, e.CurrentIndex()+1, e.QuestionCount(), q.Text)

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, option := range q.Options {
		label := option
		if option == e.SelectedOption() {
			label = "✅ " + option
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbOptionPrefix, i)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if e.CanGoBack() {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cbBack))
	}
	next := "Next ➡"
	if e.IsLastQuestion() {
		next = "Finish"
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(next, cbNext))
	rows = append(rows, nav)

	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return view{text: text, keyboard: &kb}
}

func renderSubmitting(e *session.Engine) view {
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Retry submit", cbRetry),
	))
	return view{
		text:     fmt.Sprintf("%s\n\nYour answers could not be saved yet.", e.Quiz().Title),
		keyboard: &kb,
	}
}

func renderResult(e *session.Engine) view {
	result, err := e.Result()
	if err != nil {
		return view{text: "No result available."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nScore: %d/%d (%d%%)\nGrade: %s", e.Quiz().Title, result.Score, result.Total, result.Percentage, result.Grade)

	if prior := e.PriorAttempts(); len(prior) > 0 {
		b.WriteString("\n\nPrevious attempts:")
		for _, a := range prior {
			fmt.Fprintf(&b, "\n#%d: %d/%d (%d%%) %s", a.Number, a.Score, a.TotalQuestions, a.Percentage, a.Grade)
		}
	}

	var row []tgbotapi.InlineKeyboardButton
	if e.Stale() {
		b.WriteString("\n\nThe quiz changed since this attempt, so it cannot be reviewed.")
	} else {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Review answers", cbReview))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("Retake", cbRetake))

	kb := tgbotapi.NewInlineKeyboardMarkup(row)
	return view{text: b.String(), keyboard: &kb}
}

func renderReview(e *session.Engine) view {
	items, err := e.Review()
	if err != nil {
		return view{text: "Review is not available."}
	}

	var b strings.Builder
	b.WriteString(e.Quiz().Title)
	b.WriteString("\n\nReview")
	for i, item := range items {
		mark := "❌"
		if item.Correct() {
			mark = "✅"
		}
		fmt.Fprintf(&b, "\n\n%d. %s\n%s Your answer: %s", i+1, item.Question.Text, mark, item.Answer.Selected)
		if !item.Correct() {
			fmt.Fprintf(&b, "\nCorrect answer: %s", item.Question.CorrectOption)
		}
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Back to results", cbSummary),
		tgbotapi.NewInlineKeyboardButtonData("Retake", cbRetake),
	))
	return view{text: b.String(), keyboard: &kb}
}
