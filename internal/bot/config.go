package bot

import (
	"time"

	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/internal/selector"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Telegram bot API token
	Token string
	// Chats allowed to run admin commands such as /reload
	AdminIDs []int64
	// Session tunables used for every chat
	Quiz quiz.Config
	// Sample size of the quick quiz
	QuickSize int
	// Number of finished sessions listed by /stats
	RecentResults int
	// Chats idle this long are dropped from memory; 0 keeps them
	ChatIdleTTL time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		Quiz:          quiz.DefaultConfig(),
		QuickSize:     selector.DefaultQuickSize,
		RecentResults: 5,
		ChatIdleTTL:   24 * time.Hour,
	}
}
