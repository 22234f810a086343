// minigram-echo is a minimal bot: it answers /start, flips a demo inline
// button, and echoes any other text message back to the chat.
//
// Configuration comes from the environment (a .env file is honored):
//
//	TELEGRAM_BOT_TOKEN   bot token from @BotFather (required)
//	POLLING_TIMEOUT      long-poll wait in seconds (default 30)
//	LOG_LEVEL            debug|info|warn|error (default info)
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/prilive-com/minigram"
	"github.com/prilive-com/minigram/obj"
	"github.com/prilive-com/minigram/tg"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}

	pollTimeout := 30
	if v := os.Getenv("POLLING_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pollTimeout = n
		}
	}

	bot, err := minigram.New(token,
		minigram.WithLogger(logger),
		minigram.WithPolling(pollTimeout, 100),
		minigram.WithDeleteWebhook(),
		minigram.WithHandler(echoHandler{}),
		minigram.WithCommand("start", onStart),
		minigram.WithCallback("^demo:", onDemoButton),
	)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}
	defer bot.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func onStart(ctx context.Context, bot *minigram.Bot, msg obj.Obj) error {
	chatID := msg.Field("chat").Field("id").Int()
	_, err := bot.SendMessage(ctx, chatID, "Hi! Send me anything and I will echo it.",
		tg.Params{
			"reply_markup": map[string]any{
				"inline_keyboard": [][]map[string]any{{
					{"text": "Press me", "callback_data": "demo:pressed"},
				}},
			},
		})
	return err
}

func onDemoButton(ctx context.Context, bot *minigram.Bot, query obj.Obj) error {
	chatID := query.Field("message").Field("chat").Field("id").Int()
	_, err := bot.SendMessage(ctx, chatID, "Button pressed: "+query.Field("data").Str())
	return err
}

// echoHandler sends every plain text message back to its chat.
type echoHandler struct {
	minigram.NopHandler
}

func (echoHandler) OnUpdate(ctx context.Context, bot *minigram.Bot, update tg.Update) error {
	msg := update.Message()
	text := msg.Field("text").Str()
	if text == "" {
		return nil
	}
	_, err := bot.SendMessage(ctx, msg.Field("chat").Field("id").Int(), text)
	return err
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
