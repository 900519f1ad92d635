package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels: TASKBOARD_SCHEDULER__GRACE_WINDOW.
const EnvPrefix = "TASKBOARD_"

type Config struct {
	Store     StoreConfig     `koanf:"store"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	UI        UIConfig        `koanf:"ui"`
	Telegram  TelegramConfig  `koanf:"telegram"`
	Log       LogConfig       `koanf:"log"`
}

type StoreConfig struct {
	Driver string `koanf:"driver"` // sqlite, postgres or memory
	Path   string `koanf:"path"`   // SQLite database file
	DSN    string `koanf:"dsn"`    // Postgres connection string
}

type SchedulerConfig struct {
	Interval    time.Duration `koanf:"interval"`
	GraceWindow time.Duration `koanf:"grace_window"`
	CatchUp     bool          `koanf:"catch_up"` // fire reminders missed by more than the grace window
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
	ChartWidth    int  `koanf:"chart_width"`
	WordWrap      int  `koanf:"word_wrap"`
}

type TelegramConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BotToken string `koanf:"bot_token"`
	ChatID   int64  `koanf:"chat_id"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Shortcuts shared with other Telegram tooling
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		k.Set("telegram.bot_token", token)
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		k.Set("telegram.chat_id", chatID)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Path = expandPath(cfg.Store.Path)

	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store driver: %s (supported: sqlite, postgres, memory)", c.Store.Driver)
	}

	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive, got %s", c.Scheduler.Interval)
	}

	if c.Scheduler.GraceWindow <= 0 {
		return fmt.Errorf("scheduler.grace_window must be positive, got %s", c.Scheduler.GraceWindow)
	}

	if c.UI.ChartWidth < 5 {
		return fmt.Errorf("ui.chart_width must be at least 5")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("Telegram bot token is required (set TELEGRAM_BOT_TOKEN or telegram.bot_token)")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("Telegram chat id is required (set TELEGRAM_CHAT_ID or telegram.chat_id)")
		}
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		return fmt.Errorf("unknown log level: %s", c.Log.Level)
	}

	return nil
}

// NewLogger builds the process logger from the log section.
func (c *Config) NewLogger() *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO", "":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
