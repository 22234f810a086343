package receiver

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prilive-com/minigram/tg"
)

// Config holds polling configuration.
type Config struct {
	// PollTimeout is the server-side long-poll wait, in seconds (0-60).
	PollTimeout int

	// PollLimit is the maximum updates per request (1-100).
	PollLimit int

	// MaxErrors stops the loop after this many consecutive fetch
	// failures. 0 means never stop.
	MaxErrors int

	// ErrorPause is the fixed delay between failed fetch iterations,
	// so a dead network does not spin the loop hot. This is loop
	// pacing; individual calls are never retried.
	ErrorPause time.Duration

	// AllowedUpdates filters update types server-side.
	AllowedUpdates []string

	// DeleteWebhookFirst removes a registered webhook before polling,
	// since Telegram rejects getUpdates while a webhook is set.
	DeleteWebhookFirst bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollTimeout: 30,
		PollLimit:   100,
		MaxErrors:   10,
		ErrorPause:  time.Second,
	}
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if timeout, err := strconv.Atoi(getEnv("POLLING_TIMEOUT", "30")); err == nil {
		if timeout < 0 || timeout > 60 {
			return nil, tg.NewValidationError("POLLING_TIMEOUT", "must be 0-60")
		}
		cfg.PollTimeout = timeout
	}

	if limit, err := strconv.Atoi(getEnv("POLLING_LIMIT", "100")); err == nil {
		if limit < 1 || limit > 100 {
			return nil, tg.NewValidationError("POLLING_LIMIT", "must be 1-100")
		}
		cfg.PollLimit = limit
	}

	if maxErrors, err := strconv.Atoi(getEnv("POLLING_MAX_ERRORS", "10")); err == nil {
		cfg.MaxErrors = maxErrors
	}

	if d, err := time.ParseDuration(getEnv("POLLING_ERROR_PAUSE", "1s")); err == nil {
		cfg.ErrorPause = d
	}

	if updates := getEnv("ALLOWED_UPDATES", ""); updates != "" {
		for _, u := range strings.Split(updates, ",") {
			if trimmed := strings.TrimSpace(u); trimmed != "" {
				cfg.AllowedUpdates = append(cfg.AllowedUpdates, trimmed)
			}
		}
	}

	cfg.DeleteWebhookFirst = strings.ToLower(getEnv("POLLING_DELETE_WEBHOOK", "false")) == "true"

	return &cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
