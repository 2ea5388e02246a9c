package bot

import (
	"math/rand"
	"sync"
	"time"

	"github.com/example/vocabquiz/internal/bookmarks"
	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/internal/selector"
	"github.com/example/vocabquiz/pkg/models"
)

// chat is the quiz state of one Telegram chat. mu serializes every
// handler touching it.
type chat struct {
	mu        sync.Mutex
	id        int64
	session   *quiz.Session
	bookmarks *bookmarks.Store
	rnd       *rand.Rand
	mode      selector.Mode
	missed    []models.VocabItem // of the last finished session
	saved     bool               // result of the current session persisted
	lastSeen  time.Time
	evicted   bool
}

type chatRegistry struct {
	mu      sync.Mutex
	chats   map[int64]*chat
	newChat func(id int64) *chat
}

func newChatRegistry(newChat func(id int64) *chat) *chatRegistry {
	return &chatRegistry{
		chats:   make(map[int64]*chat),
		newChat: newChat,
	}
}

// get returns the state of chat id, creating it on first use
func (r *chatRegistry) get(id int64) *chat {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chats[id]
	if !ok {
		c = r.newChat(id)
		r.chats[id] = c
	}
	return c
}

// sweep drops the chats not used since cutoff. Chats busy in a handler are
// kept.
func (r *chatRegistry) sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, c := range r.chats {
		if !c.mu.TryLock() {
			continue
		}
		if c.lastSeen.Before(cutoff) {
			c.evicted = true
			delete(r.chats, id)
			dropped++
		}
		c.mu.Unlock()
	}
	return dropped
}

func (r *chatRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chats)
}

func (b *Bot) newChat(id int64) *chat {
	logger := b.logger.With("chat", id)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano() + id))

	session := quiz.NewSession(b.config.Quiz, rnd, logger)
	session.SetObserver(b.deps.Observer)

	return &chat{
		id:        id,
		session:   session,
		bookmarks: bookmarks.NewStore(b.deps.Bookmarks.ForOwner(ownerID(id)), logger),
		rnd:       rnd,
		lastSeen:  time.Now(),
	}
}

// lockChat returns the locked state of chatID; the caller unlocks it
func (b *Bot) lockChat(chatID int64) *chat {
	for {
		c := b.chats.get(chatID)
		c.mu.Lock()
		if !c.evicted {
			c.lastSeen = time.Now()
			return c
		}
		c.mu.Unlock()
	}
}

// sweepIdleChats forgets chats idle for longer than ChatIdleTTL. Their
// bookmarks are persisted; a running quiz is lost.
func (b *Bot) sweepIdleChats() int {
	if b.config.ChatIdleTTL <= 0 {
		return 0
	}
	dropped := b.chats.sweep(time.Now().Add(-b.config.ChatIdleTTL))
	if dropped > 0 {
		b.logger.Debug("dropped idle chats", "count", dropped, "remaining", b.chats.len())
	}
	return dropped
}
