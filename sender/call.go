package sender

import (
	"context"

	"github.com/prilive-com/minigram/tg"
)

// Typed convenience wrappers over the generic Invoke primitive. Each takes
// the method's required parameters plus optional extras merged on top, so
// any documented field remains reachable:
//
//	client.SendMessage(ctx, chatID, "hi", tg.Params{"parse_mode": "HTML"})

// GetMe returns basic information about the bot's own account.
func (c *Client) GetMe(ctx context.Context) (tg.Response, error) {
	return c.Invoke(ctx, "getMe", nil)
}

// SendMessage sends a text message. chatID may be a numeric id or an
// @channel username.
func (c *Client) SendMessage(ctx context.Context, chatID any, text string, extra ...tg.Params) (tg.Response, error) {
	return c.Invoke(ctx, "sendMessage", merge(tg.Params{
		"chat_id": chatID,
		"text":    text,
	}, extra))
}

// SendDocument uploads and sends a general file.
func (c *Client) SendDocument(ctx context.Context, chatID any, document InputFile, extra ...tg.Params) (tg.Response, error) {
	return c.Invoke(ctx, "sendDocument", merge(tg.Params{
		"chat_id":  chatID,
		"document": document,
	}, extra))
}

// SendPhoto uploads and sends a photo.
func (c *Client) SendPhoto(ctx context.Context, chatID any, photo InputFile, extra ...tg.Params) (tg.Response, error) {
	return c.Invoke(ctx, "sendPhoto", merge(tg.Params{
		"chat_id": chatID,
		"photo":   photo,
	}, extra))
}

// AnswerCallbackQuery acknowledges a callback query, stopping the client's
// progress indicator. Answering an already-answered query is harmless.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string, extra ...tg.Params) (tg.Response, error) {
	return c.Invoke(ctx, "answerCallbackQuery", merge(tg.Params{
		"callback_query_id": callbackQueryID,
	}, extra))
}

// GetUpdates long-polls for incoming updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, limit, timeout int, extra ...tg.Params) (tg.Response, error) {
	return c.Invoke(ctx, "getUpdates", merge(tg.Params{
		"offset":  offset,
		"limit":   limit,
		"timeout": timeout,
	}, extra))
}

// DeleteWebhook removes a registered webhook so long polling can take over.
func (c *Client) DeleteWebhook(ctx context.Context, dropPendingUpdates bool) (tg.Response, error) {
	return c.Invoke(ctx, "deleteWebhook", tg.Params{
		"drop_pending_updates": dropPendingUpdates,
	})
}

func merge(base tg.Params, extras []tg.Params) tg.Params {
	for _, extra := range extras {
		for k, v := range extra {
			base[k] = v
		}
	}
	return base
}
