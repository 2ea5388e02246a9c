// Package config loads application settings from .env, an optional YAML
// file and VOCABQUIZ_* environment variables.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/example/vocabquiz/internal/database"
	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/internal/selector"
)

// EnvPrefix is prepended to every environment variable, e.g. VOCABQUIZ_DATABASE_DSN
const EnvPrefix = "VOCABQUIZ"

// Config is the complete application configuration
type Config struct {
	Database struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Catalog struct {
		Path string `mapstructure:"path"` // JSON, YAML, xlsx or csv file imported on startup when set
	} `mapstructure:"catalog"`
	Telegram struct {
		Token       string        `mapstructure:"token"`
		AdminIDs    []int64       `mapstructure:"admin_ids"`
		ChatIdleTTL time.Duration `mapstructure:"chat_idle_ttl"` // 0 keeps chats forever
	} `mapstructure:"telegram"`
	Quiz struct {
		QuickSize      int     `mapstructure:"quick_size"`
		WeakCapacity   int     `mapstructure:"weak_capacity"`
		ReinsertCap    int     `mapstructure:"reinsert_cap"`
		CloseThreshold float64 `mapstructure:"close_threshold"`
	} `mapstructure:"quiz"`
	Scheduler struct {
		Enabled      bool   `mapstructure:"enabled"`
		ReminderTime string `mapstructure:"reminder_time"` // HH:MM, UTC
	} `mapstructure:"scheduler"`
	Metrics struct {
		Addr string `mapstructure:"addr"` // empty disables the /metrics listener
	} `mapstructure:"metrics"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	db := database.DefaultConfig()
	q := quiz.DefaultConfig()

	v.SetDefault("database.driver", db.Driver)
	v.SetDefault("database.dsn", db.DSN)
	v.SetDefault("catalog.path", "")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_ids", []int64{})
	v.SetDefault("telegram.chat_idle_ttl", 24*time.Hour)
	v.SetDefault("quiz.quick_size", selector.DefaultQuickSize)
	v.SetDefault("quiz.weak_capacity", q.WeakCapacity)
	v.SetDefault("quiz.reinsert_cap", q.ReinsertCap)
	v.SetDefault("quiz.close_threshold", q.CloseThreshold)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.reminder_time", "09:00")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
}

// Load reads the configuration. path names an optional YAML file; when
// empty, config.yaml is looked up in the working directory.
func Load(path string) (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("telegram.token", EnvPrefix+"_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, errors.Wrap(err, "failed to bind telegram token")
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		slog.Debug("config file not found, using defaults and environment")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return errors.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if _, err := time.Parse("15:04", c.Scheduler.ReminderTime); err != nil {
		return errors.Wrapf(err, "invalid scheduler.reminder_time %q", c.Scheduler.ReminderTime)
	}
	if c.Quiz.CloseThreshold <= 0 || c.Quiz.CloseThreshold > 100 {
		return errors.Errorf("quiz.close_threshold must be in (0, 100], got %v", c.Quiz.CloseThreshold)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// DatabaseConfig returns the storage settings
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{Driver: c.Database.Driver, DSN: c.Database.DSN}
}

// QuizConfig returns the session tunables
func (c *Config) QuizConfig() quiz.Config {
	q := quiz.DefaultConfig()
	q.WeakCapacity = c.Quiz.WeakCapacity
	q.ReinsertCap = c.Quiz.ReinsertCap
	q.CloseThreshold = c.Quiz.CloseThreshold
	return q
}

// SelectorOptions returns the item selection settings
func (c *Config) SelectorOptions() selector.Options {
	return selector.Options{QuickSize: c.Quiz.QuickSize}
}

// ParseLevel maps a level name to a slog.Level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, errors.Wrapf(err, "invalid log level %q", name)
	}
	return level, nil
}
