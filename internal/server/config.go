// Package server provides configuration helpers that define runtime defaults,
// environment loading and validation for the chat relay.
package server

import (
	"strings"
	"time"
	"unicode/utf8"

	env "github.com/Netflix/go-env"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Config holds the server configuration. List settings are comma separated.
type Config struct {
	Port                    string        `env:"SERVER_PORT"`
	AllowedOrigins          string        `env:"ALLOWED_ORIGINS"`
	MaxMessageSize          int64         `env:"MAX_MESSAGE_SIZE"`
	MaxFileSize             int           `env:"MAX_FILE_SIZE"`
	RateLimitBurst          int           `env:"RATE_LIMIT_BURST"`
	RateLimitRefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL"`
	Rooms                   string        `env:"ROOMS"`
	DefaultRoom             string        `env:"DEFAULT_ROOM"`
	PageSize                int           `env:"PAGE_SIZE"`
	Reactions               string        `env:"REACTIONS"`
	CensoredWords           string        `env:"CENSORED_WORDS"`
	CensorCharacter         string        `env:"CENSOR_CHARACTER"`
	SendBuffer              int           `env:"SEND_BUFFER"`
	LogLevel                string        `env:"LOG_LEVEL"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Port:                    ":5000",
		AllowedOrigins:          "http://localhost:5000,http://localhost:5173",
		MaxMessageSize:          10 << 20,
		MaxFileSize:             8 << 20,
		RateLimitBurst:          10,
		RateLimitRefillInterval: time.Second,
		Rooms:                   "general,sports,tech,random",
		DefaultRoom:             "general",
		PageSize:                chat.DefaultPageSize,
		Reactions:               strings.Join(chat.DefaultReactions, ","),
		CensorCharacter:         "*",
		SendBuffer:              256,
		LogLevel:                "INFO",
		ShutdownTimeout:         10 * time.Second,
	}
}

// LoadConfig starts from DefaultConfig, applies the process environment on
// top and sanitizes the result.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return cfg, errors.Wrap(err, "load configuration from environment")
	}
	return SanitizeConfig(cfg), nil
}

// SanitizeConfig replaces unusable values with their defaults.
func SanitizeConfig(cfg Config) Config {
	def := DefaultConfig()

	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = def.Port
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = def.MaxFileSize
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = def.RateLimitBurst
	}
	if cfg.RateLimitRefillInterval <= 0 {
		cfg.RateLimitRefillInterval = def.RateLimitRefillInterval
	}
	if len(splitList(cfg.Rooms)) == 0 {
		cfg.Rooms = def.Rooms
	}
	if rooms := cfg.RoomList(); !lo.Contains(rooms, cfg.DefaultRoom) {
		cfg.DefaultRoom = rooms[0]
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if len(splitList(cfg.Reactions)) == 0 {
		cfg.Reactions = def.Reactions
	}
	if utf8.RuneCountInString(cfg.CensorCharacter) != 1 {
		cfg.CensorCharacter = def.CensorCharacter
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	return cfg
}

// RoomList returns the configured rooms without duplicates.
func (c Config) RoomList() []string {
	return lo.Uniq(splitList(c.Rooms))
}

// OriginList returns the configured WebSocket origins.
func (c Config) OriginList() []string {
	return splitList(c.AllowedOrigins)
}

// ReactionList returns the allowed reaction symbols.
func (c Config) ReactionList() []string {
	return lo.Uniq(splitList(c.Reactions))
}

// CensoredWordList returns the moderation dictionary.
func (c Config) CensoredWordList() []string {
	return splitList(c.CensoredWords)
}

// CensorRune returns the moderation mask character.
func (c Config) CensorRune() rune {
	r, _ := utf8.DecodeRuneInString(c.CensorCharacter)
	return r
}

func splitList(value string) []string {
	return lo.Compact(lo.Map(strings.Split(value, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}
