package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/internal/selector"
	"github.com/example/vocabquiz/pkg/models"
)

// HandleMessage handles commands and answers
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.Chat == nil {
		return errors.New("invalid message: required fields are missing")
	}
	if message.IsCommand() {
		return b.HandleCommand(ctx, message)
	}
	return b.handleAnswer(ctx, message.Chat.ID, message.Text)
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start", "help", "menu":
		return b.handleStart(chatID)
	case "days":
		return b.handleDays(chatID)
	case "list":
		return b.handleList(chatID, message.CommandArguments())
	case "quiz":
		return b.startQuiz(ctx, chatID, selector.ParseMode(orDefault(message.CommandArguments(), "quick")))
	case "hint":
		return b.handleHint(chatID)
	case "reveal":
		return b.handleReveal(chatID)
	case "skip":
		return b.handleSkip(ctx, chatID)
	case "next":
		return b.handleNext(ctx, chatID)
	case "star":
		return b.handleStar(chatID, "")
	case "starred":
		return b.handleStarred(chatID)
	case "retry":
		return b.handleRetry(ctx, chatID)
	case "stats":
		return b.handleStats(ctx, chatID)
	case "reload":
		if message.From == nil || !b.isAdmin(message.From.ID) {
			return b.sendText(chatID, "This command is only available for administrators.")
		}
		return b.handleReload(ctx, chatID)
	default:
		return b.handleUnknownCommand(chatID)
	}
}

// HandleCallback handles inline keyboard buttons
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.Message.Chat == nil {
		return errors.New("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", "error", err)
	}

	chatID := callback.Message.Chat.ID
	switch data := callback.Data; {
	case strings.HasPrefix(data, callbackQuiz):
		return b.startQuiz(ctx, chatID, selector.ParseMode(strings.TrimPrefix(data, callbackQuiz)))
	case strings.HasPrefix(data, callbackDayQuiz):
		day, ok := b.dayAt(strings.TrimPrefix(data, callbackDayQuiz))
		if !ok {
			return b.sendText(chatID, "This day no longer exists. Send /days again.")
		}
		return b.startQuiz(ctx, chatID, selector.Category(day))
	case strings.HasPrefix(data, callbackList):
		return b.sendDayList(chatID, strings.TrimPrefix(data, callbackList))
	case strings.HasPrefix(data, callbackListStar):
		return b.handleListStar(chatID, callback.Message.MessageID, strings.TrimPrefix(data, callbackListStar))
	case data == callbackBrowse:
		return b.handleList(chatID, "")
	case data == callbackHint:
		return b.handleHint(chatID)
	case data == callbackReveal:
		return b.handleReveal(chatID)
	case data == callbackSkip:
		return b.handleSkip(ctx, chatID)
	case data == callbackNext:
		return b.handleNext(ctx, chatID)
	case data == callbackStar:
		return b.handleStar(chatID, callback.ID)
	case data == callbackRetry:
		return b.handleRetry(ctx, chatID)
	case data == callbackDays:
		return b.handleDays(chatID)
	case data == callbackStarred:
		return b.handleStarred(chatID)
	case data == callbackStats:
		return b.handleStats(ctx, chatID)
	default:
		return b.sendText(chatID, "⚠️ Unknown action")
	}
}

func (b *Bot) handleStart(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, helpText)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleUnknownCommand(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see what I can do.")
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleDays(chatID int64) error {
	categories := b.currentCatalog().Categories()
	if len(categories) == 0 {
		return b.sendText(chatID, "The vocabulary has no days.")
	}
	msg := tgbotapi.NewMessage(chatID, "📅 Pick a day:")
	msg.ReplyMarkup = createKeyboard(dayButtons(categories, callbackDayQuiz))
	return b.sendMessage(msg)
}

// dayAt resolves a day index sent back in callback data
func (b *Bot) dayAt(index string) (string, bool) {
	i, err := strconv.Atoi(index)
	if err != nil {
		return "", false
	}
	categories := b.currentCatalog().Categories()
	if i < 0 || i >= len(categories) {
		return "", false
	}
	return categories[i], true
}

// handleList shows the terms of one day, or the day picker without arg
func (b *Bot) handleList(chatID int64, arg string) error {
	categories := b.currentCatalog().Categories()
	if len(categories) == 0 {
		return b.sendText(chatID, "The vocabulary has no days.")
	}
	if strings.TrimSpace(arg) == "" {
		msg := tgbotapi.NewMessage(chatID, "📖 Pick a day to browse:")
		msg.ReplyMarkup = createKeyboard(dayButtons(categories, callbackList))
		return b.sendMessage(msg)
	}

	mode := selector.ParseMode(arg)
	if mode.Kind == selector.KindCategory {
		for i, key := range categories {
			if key == mode.Category {
				return b.sendDayList(chatID, strconv.Itoa(i))
			}
		}
	}
	return b.sendText(chatID, "Unknown day %q. Send /list to pick one.", strings.TrimSpace(arg))
}

func (b *Bot) sendDayList(chatID int64, index string) error {
	day, ok := b.dayAt(index)
	if !ok {
		return b.sendText(chatID, "This day no longer exists. Send /list again.")
	}
	items := b.currentCatalog().ByCategory(day)

	c := b.lockChat(chatID)
	defer c.mu.Unlock()

	i, _ := strconv.Atoi(index)
	msg := tgbotapi.NewMessage(chatID, renderList(day, items, c.bookmarks.IsStarred))
	msg.ReplyMarkup = createKeyboard(listButtons(i, items, c.bookmarks.IsStarred))
	return b.sendMessage(msg)
}

// handleListStar toggles a term of a browsed day and redraws the list
func (b *Bot) handleListStar(chatID int64, messageID int, data string) error {
	dayIndex, termIndex, found := strings.Cut(data, ":")
	day, ok := b.dayAt(dayIndex)
	items := b.currentCatalog().ByCategory(day)
	n, err := strconv.Atoi(termIndex)
	if !found || !ok || err != nil || n < 0 || n >= len(items) {
		return b.sendText(chatID, "This list is out of date. Send /list again.")
	}

	c := b.lockChat(chatID)
	defer c.mu.Unlock()

	c.bookmarks.Toggle(items[n].Term)

	i, _ := strconv.Atoi(dayIndex)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		renderList(day, items, c.bookmarks.IsStarred),
		createKeyboard(listButtons(i, items, c.bookmarks.IsStarred)))
	if _, err := b.api.Request(edit); err != nil {
		return errors.Wrap(err, "failed to update term list")
	}
	return nil
}

// startQuiz selects the items for mode and starts a new session
func (b *Bot) startQuiz(ctx context.Context, chatID int64, mode selector.Mode) error {
	c := b.lockChat(chatID)
	defer c.mu.Unlock()
	return b.startLocked(c, mode)
}

func (b *Bot) startLocked(c *chat, mode selector.Mode) error {
	items := selector.Select(mode, b.currentCatalog(), c.bookmarks, selector.Options{
		QuickSize: b.config.QuickSize,
		Rand:      c.rnd,
	})
	if !c.session.Start(items) {
		msg := tgbotapi.NewMessage(c.id, "Nothing to quiz on in "+mode.String()+".")
		msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
		return b.sendMessage(msg)
	}

	c.mode = mode
	c.saved = false
	b.logger.Debug("quiz started", "chat", c.id, "mode", mode.String(), "items", len(items))
	return b.sendQuestion(c)
}

func (b *Bot) sendQuestion(c *chat) error {
	v := c.session.View()
	msg := tgbotapi.NewMessage(c.id, renderQuestion(v))
	msg.ReplyMarkup = createKeyboard(questionButtons(c.bookmarks.IsStarred(v.CurrentItem.Term)))
	return b.sendMessage(msg)
}

func (b *Bot) sendFeedback(c *chat) error {
	v := c.session.View()
	msg := tgbotapi.NewMessage(c.id, renderFeedback(v))
	msg.ReplyMarkup = createKeyboard(feedbackButtons(c.bookmarks.IsStarred(v.CurrentItem.Term)))
	return b.sendMessage(msg)
}

// replyNotActive explains why a quiz action was ignored
func (b *Bot) replyNotActive(c *chat) error {
	switch c.session.State() {
	case quiz.StateFeedback:
		return b.sendText(c.id, "Already answered. Send /next for the next question.")
	case quiz.StateActive:
		return b.sendText(c.id, "Type your answer first.")
	default:
		return b.sendText(c.id, "No quiz running. Start one with /quiz.")
	}
}

func (b *Bot) handleAnswer(ctx context.Context, chatID int64, text string) error {
	c := b.lockChat(chatID)
	defer c.mu.Unlock()

	if c.session.State() != quiz.StateActive {
		return b.replyNotActive(c)
	}
	c.session.SetInput(text)
	c.session.SubmitAnswer()
	return b.sendFeedback(c)
}

func (b *Bot) handleHint(chatID int64) error {
	c := b.lockChat(chatID)
	defer c.mu.Unlock()

	if c.session.State() != quiz.StateActive {
		return b.replyNotActive(c)
	}
	if !c.session.ProvideHint() {
		return b.sendText(chatID, "The whole term is shown already. Type it or /reveal.")
	}
	return b.sendText(chatID, "%s", renderHint(c.session.View()))
}

func (b *Bot) handleReveal(chatID int64) error {
	c := b.lockChat(chatID)
	defer c.mu.Unlock()

	if !c.session.RevealAnswer() {
		return b.replyNotActive(c)
	}
	return b.sendFeedback(c)
}

func (b *Bot) handleSkip(ctx context.Context, chatID int64) error {
	c := b.lockChat(chatID)
	defer c.mu.Unlock()

	if !c.session.Skip() {
		return b.replyNotActive(c)
	}
	return b.advanced(ctx, c)
}

func (b *Bot) handleNext(ctx context.Context, chatID int64) error {
	c := b.lockChat(chatID)
	defer c.mu.Unlock()

	if !c.session.NextQuestion() {
		return b.replyNotActive(c)
	}
	return b.advanced(ctx, c)
}

// advanced sends the next question or, at the end, the summary
func (b *Bot) advanced(ctx context.Context, c *chat) error {
	if c.session.State() == quiz.StateFinished {
		return b.finish(ctx, c)
	}
	return b.sendQuestion(c)
}

func (b *Bot) finish(ctx context.Context, c *chat) error {
	summary := c.session.Summary()
	c.missed = summary.Missed

	if !c.saved {
		result := &models.SessionResult{
			Owner:      ownerID(c.id),
			Mode:       c.mode.String(),
			TotalItems: summary.Total,
			Correct:    summary.Correct,
			Hinted:     summary.Hinted,
			Accuracy:   summary.Accuracy,
			BestStreak: summary.BestStreak,
		}
		if err := b.deps.Results.Create(ctx, result); err != nil {
			b.logger.Error("failed to save session result", "chat", c.id, "error", err)
		} else {
			c.saved = true
		}
	}

	buttons := b.MainMenuButtons()
	if len(summary.Missed) > 0 {
		buttons = append([][]MenuButton{{{Text: "🔁 Retry missed", CallbackData: callbackRetry}}}, buttons...)
	}
	msg := tgbotapi.NewMessage(c.id, renderSummary(c.mode.String(), summary))
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

// handleStar toggles the current term. From a button the outcome is shown
// as a callback notification.
func (b *Bot) handleStar(chatID int64, callbackID string) error {
	c := b.lockChat(chatID)
	defer c.mu.Unlock()

	v := c.session.View()
	if v.CurrentItem == nil {
		return b.sendText(chatID, "No term to star right now.")
	}

	text := "☆ Removed " + v.CurrentItem.Term + " from starred"
	if c.bookmarks.Toggle(v.CurrentItem.Term) {
		text = "⭐ Starred " + v.CurrentItem.Term
	}

	if callbackID != "" {
		if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err == nil {
			return nil
		}
	}
	return b.sendText(chatID, "%s", text)
}

func (b *Bot) handleStarred(chatID int64) error {
	c := b.lockChat(chatID)
	defer c.mu.Unlock()

	terms := c.bookmarks.Terms()
	msg := tgbotapi.NewMessage(chatID, renderStarred(terms))
	buttons := [][]MenuButton{{{Text: "📖 Browse days", CallbackData: callbackBrowse}}}
	if len(terms) > 0 {
		buttons = append([][]MenuButton{{{Text: "⭐ Quiz starred", CallbackData: callbackQuiz + "starred"}}}, buttons...)
	}
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

func (b *Bot) handleRetry(ctx context.Context, chatID int64) error {
	c := b.lockChat(chatID)
	defer c.mu.Unlock()

	if len(c.missed) == 0 {
		return b.sendText(chatID, "Nothing to retry. Finish a quiz first.")
	}
	return b.startLocked(c, selector.Retry(c.missed))
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	owner := ownerID(chatID)
	stats, err := b.deps.Results.GetOwnerStats(ctx, owner)
	if err != nil {
		return err
	}
	recent, err := b.deps.Results.GetByOwner(ctx, owner, b.config.RecentResults)
	if err != nil {
		return err
	}

	c := b.lockChat(chatID)
	starred := c.bookmarks.Len()
	c.mu.Unlock()

	return b.sendText(chatID, "%s", renderStats(stats, recent, starred))
}

func (b *Bot) handleReload(ctx context.Context, chatID int64) error {
	if err := b.ReloadCatalog(ctx); err != nil {
		b.logger.Error("failed to reload catalog", "error", err)
		return b.sendText(chatID, "❌ Reload failed: %v", err)
	}
	cat := b.currentCatalog()
	return b.sendText(chatID, "✅ Catalog reloaded: %d terms in %d days.", cat.Len(), len(cat.Categories()))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
