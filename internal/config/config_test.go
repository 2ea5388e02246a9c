package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, filepath.Join("data", "vocabquiz.db"), cfg.Database.DSN)
	assert.Equal(t, 30, cfg.Quiz.QuickSize)
	assert.Equal(t, 20, cfg.Quiz.WeakCapacity)
	assert.Equal(t, 2, cfg.Quiz.ReinsertCap)
	assert.Equal(t, 85.0, cfg.Quiz.CloseThreshold)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "09:00", cfg.Scheduler.ReminderTime)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 24*time.Hour, cfg.Telegram.ChatIdleTTL)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "vocabquiz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  dsn: /tmp/other.db
quiz:
  quick_size: 10
  reinsert_cap: 0
scheduler:
  reminder_time: "18:30"
telegram:
  chat_idle_ttl: 90m
`), 0o644))

	t.Setenv("VOCABQUIZ_QUIZ_QUICK_SIZE", "15")
	t.Setenv("VOCABQUIZ_LOG_LEVEL", "debug")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Database.DSN)
	assert.Equal(t, 15, cfg.Quiz.QuickSize, "environment wins over the file")
	assert.Equal(t, 0, cfg.Quiz.ReinsertCap)
	assert.Equal(t, "18:30", cfg.Scheduler.ReminderTime)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, 90*time.Minute, cfg.Telegram.ChatIdleTTL)

	q := cfg.QuizConfig()
	assert.Equal(t, 0, q.ReinsertCap)
	assert.Equal(t, 15, cfg.SelectorOptions().QuickSize)
	assert.Equal(t, "/tmp/other.db", cfg.DatabaseConfig().DSN)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VOCABQUIZ_METRICS_ADDR=:9100\n"), 0o644))
	t.Setenv("VOCABQUIZ_METRICS_ADDR", "")
	os.Unsetenv("VOCABQUIZ_METRICS_ADDR")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load("missing.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())

	for name, env := range map[string][2]string{
		"driver":    {"VOCABQUIZ_DATABASE_DRIVER", "oracle"},
		"reminder":  {"VOCABQUIZ_SCHEDULER_REMINDER_TIME", "25:99"},
		"threshold": {"VOCABQUIZ_QUIZ_CLOSE_THRESHOLD", "150"},
		"log level": {"VOCABQUIZ_LOG_LEVEL", "loud"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
