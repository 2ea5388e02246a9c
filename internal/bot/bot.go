// Package bot serves vocabulary quizzes over Telegram. Every chat gets its
// own quiz session and bookmark set.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/example/vocabquiz/internal/bookmarks"
	"github.com/example/vocabquiz/internal/catalog"
	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/internal/scheduler"
	"github.com/example/vocabquiz/pkg/models"
)

const chatSweepInterval = 10 * time.Minute

// sender is the part of the Telegram API the handlers use
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// CatalogSource loads the vocabulary catalog
type CatalogSource interface {
	Catalog(ctx context.Context) (*catalog.Catalog, error)
}

// BookmarkSource opens the bookmark persistence of one owner
type BookmarkSource interface {
	ForOwner(owner string) bookmarks.Persistence
}

// ResultStore persists finished sessions
type ResultStore interface {
	Create(ctx context.Context, result *models.SessionResult) error
	GetByOwner(ctx context.Context, owner string, limit int) ([]models.SessionResult, error)
	GetOwnerStats(ctx context.Context, owner string) (*models.OwnerStats, error)
}

// Deps are the collaborators of the bot
type Deps struct {
	Catalog   CatalogSource
	Bookmarks BookmarkSource
	Results   ResultStore
	Observer  quiz.Observer // optional, e.g. the metrics recorder
	Logger    *slog.Logger
}

// Bot represents the Telegram bot application
type Bot struct {
	api    sender
	config *BotConfig
	deps   Deps
	logger *slog.Logger
	admins map[int64]bool

	catalogMu sync.RWMutex
	catalog   *catalog.Catalog

	chats    *chatRegistry
	dispatch *dispatcher
}

// New creates a new bot instance and loads the catalog
func New(ctx context.Context, config *BotConfig, deps Deps) (*Bot, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if deps.Catalog == nil || deps.Bookmarks == nil || deps.Results == nil {
		return nil, errors.New("bot needs a catalog, bookmark and result store")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	b := &Bot{
		config: config,
		deps:   deps,
		logger: deps.Logger,
		admins: make(map[int64]bool, len(config.AdminIDs)),
	}
	for _, id := range config.AdminIDs {
		b.admins[id] = true
	}
	b.chats = newChatRegistry(b.newChat)
	b.dispatch = newDispatcher(workerIdleTime, b.handleUpdate)

	if err := b.ReloadCatalog(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Start connects to Telegram and handles updates until ctx is done
func (b *Bot) Start(ctx context.Context) error {
	if b.config.Token == "" {
		return errors.New("telegram token is not set")
	}

	botAPI, err := tgbotapi.NewBotAPI(b.config.Token)
	if err != nil {
		return errors.Wrap(err, "unable to create bot")
	}
	b.api = botAPI
	b.logger.Info("authorized on telegram", "account", botAPI.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := botAPI.GetUpdatesChan(updateConfig)

	janitor := gocron.NewScheduler(time.UTC)
	if b.config.ChatIdleTTL > 0 {
		if _, err := janitor.Every(chatSweepInterval).Do(func() { b.sweepIdleChats() }); err != nil {
			return errors.Wrap(err, "failed to schedule chat sweep")
		}
		janitor.StartAsync()
	}
	defer janitor.Stop()
	defer b.dispatch.wait()

	for {
		select {
		case <-ctx.Done():
			botAPI.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch.dispatch(ctx, update)
		}
	}
}

// ReloadCatalog replaces the catalog used for new quizzes
func (b *Bot) ReloadCatalog(ctx context.Context) error {
	cat, err := b.deps.Catalog.Catalog(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load catalog")
	}

	b.catalogMu.Lock()
	b.catalog = cat
	b.catalogMu.Unlock()

	b.logger.Info("catalog loaded", "items", cat.Len(), "categories", len(cat.Categories()))
	return nil
}

func (b *Bot) currentCatalog() *catalog.Catalog {
	b.catalogMu.RLock()
	defer b.catalogMu.RUnlock()
	return b.catalog
}

// SendStarredReminder implements the scheduler.Notifier interface
func (b *Bot) SendStarredReminder(owner string, starred int) error {
	chatID, err := strconv.ParseInt(owner, 10, 64)
	if err != nil {
		return errors.Wrapf(scheduler.ErrUnreachable, "owner %q is not a chat id", owner)
	}

	msg := tgbotapi.NewMessage(chatID, renderReminder(starred))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "⭐ Review starred", CallbackData: callbackQuiz + "starred"}},
	})
	if err := b.sendMessage(msg); err != nil {
		return err
	}
	b.logger.Info("sent starred reminder", "chat", chatID, "starred", starred)
	return nil
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.admins[userID]
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil:
		err = b.HandleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	default:
		return
	}
	if err != nil {
		b.logger.Error("failed to handle update", "update_id", update.UpdateID, "error", err)
	}
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if _, err := b.api.Send(msg); err != nil {
		return errors.Wrap(err, "failed to send message")
	}
	return nil
}

func (b *Bot) sendText(chatID int64, format string, args ...interface{}) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf(format, args...)))
}

func ownerID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
