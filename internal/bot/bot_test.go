package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabquiz/internal/database"
	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/internal/scheduler"
	"github.com/example/vocabquiz/pkg/models"
)

type fakeSender struct {
	messages  []tgbotapi.MessageConfig
	callbacks []tgbotapi.CallbackConfig
	edits     []tgbotapi.EditMessageTextConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	switch cfg := c.(type) {
	case tgbotapi.CallbackConfig:
		f.callbacks = append(f.callbacks, cfg)
	case tgbotapi.EditMessageTextConfig:
		f.edits = append(f.edits, cfg)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last() tgbotapi.MessageConfig {
	if len(f.messages) == 0 {
		return tgbotapi.MessageConfig{}
	}
	return f.messages[len(f.messages)-1]
}

type testEnv struct {
	db      *sqlx.DB
	bot     *Bot
	api     *fakeSender
	results *database.SessionResultRepository
}

func newTestBot(t *testing.T, items []models.VocabItem) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	vocab := database.NewVocabRepository(db)
	require.NoError(t, vocab.ReplaceAll(ctx, items))
	results := database.NewSessionResultRepository(db)

	cfg := DefaultConfig()
	cfg.AdminIDs = []int64{7}
	b, err := New(ctx, cfg, Deps{
		Catalog:   vocab,
		Bookmarks: database.NewBookmarkRepository(db),
		Results:   results,
	})
	require.NoError(t, err)

	api := &fakeSender{}
	b.api = api
	return &testEnv{db: db, bot: b, api: api, results: results}
}

func command(chatID int64, text string) tgbotapi.Update {
	name := text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		name = text[:i]
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}}
}

func text(chatID int64, s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: s,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID},
	}}
}

func button(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 99, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func keyboard(t *testing.T, markup interface{}) [][]tgbotapi.InlineKeyboardButton {
	t.Helper()
	switch kb := markup.(type) {
	case tgbotapi.InlineKeyboardMarkup:
		return kb.InlineKeyboard
	case *tgbotapi.InlineKeyboardMarkup:
		return kb.InlineKeyboard
	}
	require.Failf(t, "no inline keyboard", "%T", markup)
	return nil
}

func (e *testEnv) send(u tgbotapi.Update) {
	e.bot.handleUpdate(context.Background(), u)
}

func (e *testEnv) current(chatID int64) models.VocabItem {
	c := e.bot.chats.get(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.session.View()
	if v.CurrentItem == nil {
		return models.VocabItem{}
	}
	return *v.CurrentItem
}

func (e *testEnv) state(chatID int64) quiz.State {
	c := e.bot.chats.get(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.State()
}

var twoDays = []models.VocabItem{
	{ID: "1", Term: "ephemeral", Definition: "lasting a very short time", Kind: models.KindWord, Category: "Day 1"},
	{ID: "2", Term: "hit the sack", Definition: "go to bed", Kind: models.KindIdiom, Category: "Day 1"},
	{ID: "3", Term: "candid", Definition: "truthful and straightforward", Kind: models.KindWord, Category: "Day 2"},
}

func TestStartShowsMenu(t *testing.T) {
	env := newTestBot(t, twoDays)
	env.send(command(1, "/start"))

	msg := env.api.last()
	assert.Equal(t, int64(1), msg.ChatID)
	assert.Contains(t, msg.Text, "/quiz")
	assert.IsType(t, tgbotapi.InlineKeyboardMarkup{}, msg.ReplyMarkup)
}

func TestDaysListsCategories(t *testing.T) {
	env := newTestBot(t, twoDays)
	env.send(command(1, "/days"))

	kb := keyboard(t, env.api.last().ReplyMarkup)
	require.Len(t, kb, 1)
	require.Len(t, kb[0], 2)
	assert.Equal(t, "Day 2", kb[0][1].Text)
	assert.Equal(t, "qday:1", *kb[0][1].CallbackData)

	env.send(button(1, *kb[0][1].CallbackData))
	assert.Contains(t, env.api.last().Text, "Question 1/1 · Day 2")
}

func TestDayButtonsFitCallbackLimit(t *testing.T) {
	long := strings.Repeat("Phrasal verbs for travel and work ", 4)
	env := newTestBot(t, []models.VocabItem{
		{ID: "1", Term: "set off", Definition: "begin a journey", Kind: models.KindIdiom, Category: long},
	})

	env.send(command(1, "/days"))
	data := *keyboard(t, env.api.last().ReplyMarkup)[0][0].CallbackData
	assert.LessOrEqual(t, len(data), 64)

	env.send(button(1, data))
	assert.Equal(t, quiz.StateActive, env.state(1))
	assert.Equal(t, "set off", env.current(1).Term)

	env.send(button(1, "qday:5"))
	assert.Contains(t, env.api.last().Text, "no longer exists")
}

func TestListShowsDayAndTogglesStars(t *testing.T) {
	env := newTestBot(t, twoDays)

	env.send(command(1, "/list 1"))
	msg := env.api.last()
	assert.Contains(t, msg.Text, "📖 Day 1 (2 terms)")
	assert.Contains(t, msg.Text, "☆ hit the sack (Idiom)\ngo to bed")

	kb := keyboard(t, msg.ReplyMarkup)
	require.Len(t, kb, 3)
	assert.Equal(t, "☆ hit the sack", kb[1][0].Text)
	assert.Equal(t, "lstar:0:1", *kb[1][0].CallbackData)
	assert.Equal(t, "qday:0", *kb[2][0].CallbackData)

	env.send(button(1, "lstar:0:1"))
	require.Len(t, env.api.edits, 1)
	edit := env.api.edits[0]
	assert.Equal(t, 99, edit.MessageID)
	assert.Contains(t, edit.Text, "⭐ hit the sack")
	require.NotNil(t, edit.ReplyMarkup)
	assert.Equal(t, "⭐ hit the sack", keyboard(t, edit.ReplyMarkup)[1][0].Text)

	env.send(command(1, "/starred"))
	assert.Contains(t, env.api.last().Text, "hit the sack")

	// Unstar without meeting the term in a quiz
	env.send(button(1, "lstar:0:1"))
	require.Len(t, env.api.edits, 2)
	assert.Contains(t, env.api.edits[1].Text, "☆ hit the sack")

	owners, err := database.NewBookmarkRepository(env.db).Owners(context.Background())
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestListPickerAndUnknownDay(t *testing.T) {
	env := newTestBot(t, twoDays)

	env.send(command(1, "/list"))
	kb := keyboard(t, env.api.last().ReplyMarkup)
	assert.Equal(t, "list:1", *kb[0][1].CallbackData)

	env.send(button(1, "list:1"))
	assert.Contains(t, env.api.last().Text, "📖 Day 2 (1 terms)")

	env.send(command(1, "/list Day 9"))
	assert.Contains(t, env.api.last().Text, `Unknown day "Day 9"`)

	env.send(button(1, "lstar:0:7"))
	assert.Contains(t, env.api.last().Text, "out of date")
	assert.Empty(t, env.api.edits)
}

func TestQuizRoundTrip(t *testing.T) {
	env := newTestBot(t, twoDays)
	env.send(command(1, "/quiz 1"))

	assert.Equal(t, quiz.StateActive, env.state(1))
	assert.Contains(t, env.api.last().Text, "Question 1/2 · Day 1")

	// First item right, second wrong
	env.send(text(1, env.current(1).Term))
	assert.Contains(t, env.api.last().Text, "Perfect!")
	env.send(button(1, callbackNext))
	assert.Contains(t, env.api.last().Text, "Question 2/2")

	missed := env.current(1)
	env.send(text(1, "zzz"))
	assert.Contains(t, env.api.last().Text, "Answer: "+missed.Term)

	// floor(0.75*2) = 1: the missed item comes back once
	env.send(command(1, "/next"))
	assert.Contains(t, env.api.last().Text, "Question 3/3")
	assert.Equal(t, missed.Term, env.current(1).Term)

	// Missed again: it comes back a second time, then the cap drops it
	env.send(command(1, "/skip"))
	assert.Contains(t, env.api.last().Text, "Question 4/4")
	env.send(command(1, "/skip"))
	assert.Equal(t, quiz.StateFinished, env.state(1))

	summary := env.api.last().Text
	assert.Contains(t, summary, "Score: 1/2 (50%)")
	assert.Contains(t, summary, "• "+missed.Term)

	stored, err := env.results.GetByOwner(context.Background(), "1", 5)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Day 1", stored[0].Mode)
	assert.Equal(t, 2, stored[0].TotalItems)
	assert.Equal(t, 1, stored[0].Correct)

	// Retry replays the missed term only
	env.send(button(1, callbackRetry))
	assert.Contains(t, env.api.last().Text, "Question 1/1")
	assert.Equal(t, missed.Term, env.current(1).Term)
}

func TestHintAndReveal(t *testing.T) {
	env := newTestBot(t, twoDays[2:])
	env.send(command(1, "/quiz all"))

	env.send(command(1, "/hint"))
	assert.Equal(t, "💡 c_____", env.api.last().Text)
	env.send(button(1, callbackHint))
	assert.Equal(t, "💡 ca____", env.api.last().Text)

	env.send(command(1, "/reveal"))
	assert.Contains(t, env.api.last().Text, "Revealed.")
	assert.Equal(t, quiz.StateFeedback, env.state(1))

	env.send(command(1, "/hint"))
	assert.Contains(t, env.api.last().Text, "/next")
}

func TestAnswerWithoutQuiz(t *testing.T) {
	env := newTestBot(t, twoDays)
	env.send(text(1, "ephemeral"))
	assert.Contains(t, env.api.last().Text, "No quiz running")
}

func TestEmptyModeIsRefused(t *testing.T) {
	env := newTestBot(t, twoDays)
	env.send(command(1, "/quiz starred"))

	assert.Equal(t, quiz.StateIdle, env.state(1))
	assert.Contains(t, env.api.last().Text, "Nothing to quiz on in starred")
}

func TestStarPersistsAndFeedsStarredQuiz(t *testing.T) {
	env := newTestBot(t, twoDays)
	env.send(command(1, "/quiz all"))
	term := env.current(1).Term

	env.send(button(1, callbackStar))
	require.Len(t, env.api.callbacks, 2)
	assert.Equal(t, "⭐ Starred "+term, env.api.callbacks[1].Text)

	env.send(command(1, "/starred"))
	assert.Contains(t, env.api.last().Text, term)

	env.send(command(1, "/quiz starred"))
	assert.Contains(t, env.api.last().Text, "Question 1/1")
	assert.Equal(t, term, env.current(1).Term)

	owners, err := database.NewBookmarkRepository(env.db).Owners(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []database.OwnerBookmarkCount{{Owner: "1", Starred: 1}}, owners)
}

func TestChatsAreIndependent(t *testing.T) {
	env := newTestBot(t, twoDays)
	env.send(command(1, "/quiz all"))
	env.send(command(2, "/stats"))

	assert.Equal(t, quiz.StateActive, env.state(1))
	assert.Equal(t, quiz.StateIdle, env.state(2))
	assert.Equal(t, 2, env.bot.chats.len())
	assert.Contains(t, env.api.last().Text, "No finished quizzes yet")
}

func TestReloadIsAdminOnly(t *testing.T) {
	env := newTestBot(t, twoDays)

	env.send(command(1, "/reload"))
	assert.Contains(t, env.api.last().Text, "administrators")

	env.send(command(7, "/reload"))
	assert.Contains(t, env.api.last().Text, "3 terms in 2 days")
}

func TestSendStarredReminder(t *testing.T) {
	env := newTestBot(t, twoDays)

	require.NoError(t, env.bot.SendStarredReminder("42", 1))
	msg := env.api.last()
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "1 starred term waiting")

	err := env.bot.SendStarredReminder("local", 3)
	assert.ErrorIs(t, err, scheduler.ErrUnreachable)
}

func TestRemindersSkipProfileOwners(t *testing.T) {
	env := newTestBot(t, twoDays)
	repo := database.NewBookmarkRepository(env.db)
	ctx := context.Background()
	require.NoError(t, repo.Replace(ctx, "local", []string{"candid"}))
	require.NoError(t, repo.Replace(ctx, "42", []string{"ephemeral", "candid"}))

	sent, err := scheduler.New(repo, env.bot, nil).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, env.api.messages, 1)
	assert.Equal(t, int64(42), env.api.messages[0].ChatID)
}

func TestIdleChatsAreSwept(t *testing.T) {
	env := newTestBot(t, twoDays)
	env.bot.config.ChatIdleTTL = time.Hour

	env.send(command(1, "/quiz all"))
	env.send(command(2, "/quiz all"))
	require.Equal(t, 2, env.bot.chats.len())

	old := env.bot.chats.get(1)
	old.mu.Lock()
	old.lastSeen = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()

	assert.Equal(t, 1, env.bot.sweepIdleChats())
	assert.Equal(t, 1, env.bot.chats.len())
	assert.Equal(t, quiz.StateActive, env.state(2))

	// A swept chat starts over
	assert.Equal(t, quiz.StateIdle, env.state(1))

	env.bot.config.ChatIdleTTL = 0
	assert.Equal(t, 0, env.bot.sweepIdleChats())
}
