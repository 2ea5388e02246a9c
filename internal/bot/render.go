package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocabquiz/internal/grading"
	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/pkg/models"
)

// Callback data. Days are passed by their index in the catalog so the
// data stays within Telegram's 64 byte limit.
const (
	callbackQuiz     = "quiz:"  // followed by a mode
	callbackDayQuiz  = "qday:"  // followed by a day index
	callbackList     = "list:"  // followed by a day index
	callbackListStar = "lstar:" // followed by day index ":" term index
	callbackHint     = "hint"
	callbackReveal   = "reveal"
	callbackSkip     = "skip"
	callbackNext     = "next"
	callbackStar     = "star"
	callbackRetry    = "retry"
	callbackDays     = "days"
	callbackBrowse   = "browse"
	callbackStarred  = "starred"
	callbackStats    = "stats"
)

const helpText = `📚 Vocabulary quiz

Read the definition and type the term.

/quiz [mode] - start a quiz: quick, all, starred or a day number
/days - list the days
/list [day] - browse the terms of a day and star them
/hint - show the next letter
/reveal - show the answer
/skip - reveal and move on
/next - next question
/star - star or unstar the current term
/starred - list starred terms
/retry - replay the terms you missed
/stats - your results`

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// MainMenuButtons returns the quiz mode choices
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: fmt.Sprintf("🎲 Quick %d", b.config.QuickSize), CallbackData: callbackQuiz + "quick"},
			{Text: "📖 All", CallbackData: callbackQuiz + "all"},
		},
		{
			{Text: "📅 Days", CallbackData: callbackDays},
			{Text: "⭐ Starred", CallbackData: callbackStarred},
		},
		{
			{Text: "📖 Browse", CallbackData: callbackBrowse},
			{Text: "📊 Stats", CallbackData: callbackStats},
		},
	}
}

func starIcon(starred bool) string {
	if starred {
		return "⭐"
	}
	return "☆"
}

func questionButtons(starred bool) [][]MenuButton {
	star := "☆ Star"
	if starred {
		star = "⭐ Unstar"
	}
	return [][]MenuButton{
		{
			{Text: "💡 Hint", CallbackData: callbackHint},
			{Text: "👀 Reveal", CallbackData: callbackReveal},
			{Text: "⏭ Skip", CallbackData: callbackSkip},
		},
		{{Text: star, CallbackData: callbackStar}},
	}
}

func feedbackButtons(starred bool) [][]MenuButton {
	star := "☆ Star"
	if starred {
		star = "⭐ Unstar"
	}
	return [][]MenuButton{
		{
			{Text: "➡️ Next", CallbackData: callbackNext},
			{Text: star, CallbackData: callbackStar},
		},
	}
}

// dayButtons lays out the days two per row; prefix picks the action
func dayButtons(categories []string, prefix string) [][]MenuButton {
	var rows [][]MenuButton
	for i := 0; i < len(categories); i += 2 {
		row := []MenuButton{{Text: categories[i], CallbackData: prefix + strconv.Itoa(i)}}
		if i+1 < len(categories) {
			row = append(row, MenuButton{Text: categories[i+1], CallbackData: prefix + strconv.Itoa(i+1)})
		}
		rows = append(rows, row)
	}
	return rows
}

// listButtons has one star toggle per term and a quiz button for the day
func listButtons(day int, items []models.VocabItem, starred func(term string) bool) [][]MenuButton {
	rows := make([][]MenuButton, 0, len(items)+1)
	for i, item := range items {
		rows = append(rows, []MenuButton{{
			Text:         starIcon(starred(item.Term)) + " " + item.Term,
			CallbackData: fmt.Sprintf("%s%d:%d", callbackListStar, day, i),
		}})
	}
	return append(rows, []MenuButton{{Text: "▶️ Quiz this day", CallbackData: callbackDayQuiz + strconv.Itoa(day)}})
}

func renderQuestion(v quiz.View) string {
	item := v.CurrentItem
	var sb strings.Builder

	fmt.Fprintf(&sb, "Question %d/%d", v.Position+1, v.Total)
	if item.Category != "" {
		fmt.Fprintf(&sb, " · %s", item.Category)
	}
	fmt.Fprintf(&sb, " · %s\n\n%s", item.Kind, item.Definition)
	if v.Streak > 1 {
		fmt.Fprintf(&sb, "\n\n🔥 Streak: %d", v.Streak)
	}
	return sb.String()
}

func renderHint(v quiz.View) string {
	return "💡 " + v.MaskedTerm()
}

func renderFeedback(v quiz.View) string {
	fb := v.Feedback
	icon := "❌"
	switch fb.Status {
	case grading.StatusCorrect:
		icon = "✅"
	case grading.StatusClose:
		icon = "🟡"
	}

	text := fmt.Sprintf("%s %s", icon, fb.Message)
	if fb.Status == grading.StatusClose {
		text += fmt.Sprintf(" (%.0f%%)", fb.Similarity)
	}
	if fb.Status != grading.StatusCorrect {
		text += "\nAnswer: " + v.CurrentItem.Term
	}
	return text
}

func renderSummary(mode string, s quiz.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏁 Quiz finished (%s)\n\n", mode)
	fmt.Fprintf(&sb, "Score: %d/%d (%.0f%%)\n", s.Correct, s.Total, s.Accuracy)
	fmt.Fprintf(&sb, "Hinted: %d\n", s.Hinted)
	fmt.Fprintf(&sb, "Best streak: %d", s.BestStreak)
	if len(s.Missed) > 0 {
		sb.WriteString("\n\nMissed:")
		for _, item := range s.Missed {
			fmt.Fprintf(&sb, "\n• %s: %s", item.Term, item.Definition)
		}
	}
	return sb.String()
}

func renderStats(stats *models.OwnerStats, recent []models.SessionResult, starred int) string {
	if stats.Sessions == 0 {
		return fmt.Sprintf("📊 No finished quizzes yet.\nStarred terms: %d", starred)
	}

	var sb strings.Builder
	sb.WriteString("📊 Your results\n\n")
	fmt.Fprintf(&sb, "Quizzes: %d\n", stats.Sessions)
	fmt.Fprintf(&sb, "Terms answered: %d\n", stats.ItemsAnswered)
	fmt.Fprintf(&sb, "Correct: %d\n", stats.CorrectAnswers)
	fmt.Fprintf(&sb, "Average accuracy: %.1f%%\n", stats.AverageAccuracy)
	fmt.Fprintf(&sb, "Best streak: %d\n", stats.BestStreak)
	fmt.Fprintf(&sb, "Starred terms: %d", starred)

	if len(recent) > 0 {
		sb.WriteString("\n\nRecent:")
		for _, r := range recent {
			fmt.Fprintf(&sb, "\n%s  %s  %d/%d", r.FinishedAt.Format("2006-01-02"), r.Mode, r.Correct, r.TotalItems)
		}
	}
	return sb.String()
}

func renderList(day string, items []models.VocabItem, starred func(term string) bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 %s (%d terms)", day, len(items))
	for _, item := range items {
		fmt.Fprintf(&sb, "\n\n%s %s (%s)\n%s", starIcon(starred(item.Term)), item.Term, item.Kind, item.Definition)
	}
	return sb.String()
}

func renderStarred(terms []string) string {
	if len(terms) == 0 {
		return "☆ No starred terms yet. Use /star during a quiz or browse a day with /list."
	}
	return fmt.Sprintf("⭐ Starred terms (%d)\n\n%s", len(terms), strings.Join(terms, "\n"))
}

func renderReminder(starred int) string {
	noun := "terms"
	if starred == 1 {
		noun = "term"
	}
	return fmt.Sprintf("⏰ You have %d starred %s waiting for review.", starred, noun)
}
