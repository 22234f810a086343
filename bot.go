package minigram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/prilive-com/minigram/internal/validate"
	"github.com/prilive-com/minigram/obj"
	"github.com/prilive-com/minigram/receiver"
	"github.com/prilive-com/minigram/sender"
	"github.com/prilive-com/minigram/tg"
)

// Bot is the top-level facade: one sender.Client for outbound calls and
// one receiver.PollingClient feeding updates into the registered routes.
type Bot struct {
	client  *sender.Client
	polling *receiver.PollingClient
	logger  *slog.Logger
	handler Handler

	commands  map[string]CommandFunc
	callbacks []callbackRoute

	mu sync.RWMutex
	me obj.Obj
}

type callbackRoute struct {
	re *regexp.Regexp
	fn CallbackFunc
}

type options struct {
	logger      *slog.Logger
	baseURL     string
	httpClient  *http.Client
	handler     Handler
	rps         float64
	burst       int
	rateLimited bool

	pollTimeout    int
	pollLimit      int
	maxErrors      int
	allowedUpdates []string
	deleteWebhook  bool

	commands  map[string]CommandFunc
	callbacks []callbackPattern
}

type callbackPattern struct {
	pattern string
	fn      CallbackFunc
}

// Option configures the Bot.
type Option func(*options)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBaseURL sets the API base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client. Its timeout must outlast the
// poll timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithHandler sets the catch-all update handler.
func WithHandler(h Handler) Option {
	return func(o *options) { o.handler = h }
}

// WithPolling sets the long-poll wait in seconds (0-60) and the maximum
// updates fetched per request (1-100).
func WithPolling(timeoutSeconds, limit int) Option {
	return func(o *options) {
		o.pollTimeout = timeoutSeconds
		o.pollLimit = limit
	}
}

// WithPollingMaxErrors stops Run after this many consecutive fetch
// failures. 0 means keep polling forever.
func WithPollingMaxErrors(max int) Option {
	return func(o *options) { o.maxErrors = max }
}

// WithAllowedUpdates filters update types server-side.
func WithAllowedUpdates(types ...string) Option {
	return func(o *options) { o.allowedUpdates = types }
}

// WithDeleteWebhook removes a registered webhook before polling starts.
func WithDeleteWebhook() Option {
	return func(o *options) { o.deleteWebhook = true }
}

// WithRateLimit sets global outbound rate limiting. A non-positive rps
// disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rps = rps
		o.burst = burst
		o.rateLimited = true
	}
}

// WithCommand routes messages starting with /name (optionally suffixed
// @botusername) to fn. The name is matched case-insensitively, without
// the leading slash.
func WithCommand(name string, fn CommandFunc) Option {
	return func(o *options) {
		if o.commands == nil {
			o.commands = make(map[string]CommandFunc)
		}
		o.commands[strings.ToLower(strings.TrimPrefix(name, "/"))] = fn
	}
}

// WithCallback routes callback queries whose data matches the regular
// expression to fn. Routes are tried in registration order; the first
// match wins and the query is answered automatically afterwards.
func WithCallback(pattern string, fn CallbackFunc) Option {
	return func(o *options) {
		o.callbacks = append(o.callbacks, callbackPattern{pattern: pattern, fn: fn})
	}
}

// New creates a Bot. The token is validated locally; callback patterns
// are compiled here so a bad pattern fails construction, not dispatch.
func New(token string, opts ...Option) (*Bot, error) {
	if err := validate.Token(token); err != nil {
		return nil, fmt.Errorf("%w: %s", tg.ErrInvalidToken, err)
	}

	rcfg := receiver.DefaultConfig()
	o := options{
		handler:     NopHandler{},
		pollTimeout: rcfg.PollTimeout,
		pollLimit:   rcfg.PollLimit,
		maxErrors:   rcfg.MaxErrors,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.pollTimeout < 0 || o.pollTimeout > 60 {
		return nil, tg.NewValidationError("poll timeout", "must be 0-60 seconds")
	}
	if o.pollLimit < 1 || o.pollLimit > 100 {
		return nil, tg.NewValidationError("poll limit", "must be 1-100")
	}

	b := &Bot{
		logger:   o.logger,
		handler:  o.handler,
		commands: o.commands,
	}
	for _, cp := range o.callbacks {
		re, err := regexp.Compile(cp.pattern)
		if err != nil {
			return nil, tg.NewValidationError("callback pattern", err.Error())
		}
		b.callbacks = append(b.callbacks, callbackRoute{re: re, fn: cp.fn})
	}

	scfg := sender.DefaultConfig()
	scfg.Token = tg.SecretToken(token)
	// The transport timeout must outlast the server-side long poll.
	scfg.RequestTimeout = time.Duration(o.pollTimeout)*time.Second + 10*time.Second
	if o.baseURL != "" {
		scfg.BaseURL = o.baseURL
	}
	if o.rateLimited {
		scfg.GlobalRPS = o.rps
		scfg.GlobalBurst = o.burst
	}

	var senderOpts []sender.Option
	senderOpts = append(senderOpts, sender.WithLogger(o.logger))
	if o.httpClient != nil {
		senderOpts = append(senderOpts, sender.WithHTTPClient(o.httpClient))
	}

	client, err := sender.NewFromConfig(scfg, senderOpts...)
	if err != nil {
		return nil, err
	}
	b.client = client

	rcfg.PollTimeout = o.pollTimeout
	rcfg.PollLimit = o.pollLimit
	rcfg.MaxErrors = o.maxErrors
	rcfg.AllowedUpdates = o.allowedUpdates
	rcfg.DeleteWebhookFirst = o.deleteWebhook
	b.polling = receiver.NewPollingClient(client, b.dispatch, o.logger, rcfg)

	return b, nil
}

// Run fetches the bot identity, calls the handler's OnInit, then blocks
// polling for updates until ctx is done or Stop is called. It returns
// tg.ErrUnauthorized when Telegram rejects the token.
func (b *Bot) Run(ctx context.Context) error {
	resp, err := b.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("minigram: getMe: %w", err)
	}
	if !resp.Ok() {
		if resp.ErrorCode() == 401 {
			return tg.ErrUnauthorized
		}
		return fmt.Errorf("minigram: getMe rejected: %s (code=%d)",
			resp.Description(), resp.ErrorCode())
	}

	b.mu.Lock()
	b.me = resp.Result()
	b.mu.Unlock()

	if err := b.handler.OnInit(ctx, b); err != nil {
		return fmt.Errorf("minigram: init handler: %w", err)
	}

	b.logger.Info("bot started", "username", b.Username())
	return b.polling.Run(ctx)
}

// Stop signals the polling loop to exit between iterations and waits for
// a background loop started via the receiver to finish.
func (b *Bot) Stop() {
	b.polling.Stop()
}

// Close releases the underlying HTTP resources. Call after Run returns.
func (b *Bot) Close() error {
	return b.client.Close()
}

// Me returns the bot's own user object as fetched at startup. Empty
// before Run.
func (b *Bot) Me() obj.Obj {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.me
}

// Username returns the bot's username, lowercased. Empty before Run.
func (b *Bot) Username() string {
	return strings.ToLower(b.Me().Field("username").Str())
}

// Client exposes the underlying sender for direct API access.
func (b *Bot) Client() *sender.Client {
	return b.client
}

// Invoke calls a remote method by name through the underlying client.
func (b *Bot) Invoke(ctx context.Context, method string, params tg.Params) (tg.Response, error) {
	return b.client.Invoke(ctx, method, params)
}

// SendMessage sends a text message via the underlying client.
func (b *Bot) SendMessage(ctx context.Context, chatID any, text string, extra ...tg.Params) (tg.Response, error) {
	return b.client.SendMessage(ctx, chatID, text, extra...)
}

// dispatch routes one update: callback routes first, then command routes,
// then the catch-all handler. It is the polling client's sink, so routing
// runs sequentially in update order.
func (b *Bot) dispatch(ctx context.Context, update tg.Update) error {
	if query := update.CallbackQuery(); query.Bool() {
		data := query.Field("data").Str()
		for _, route := range b.callbacks {
			if !route.re.MatchString(data) {
				continue
			}
			err := route.fn(ctx, b, query)
			b.answerCallback(ctx, query)
			return err
		}
	}

	if msg := update.Message(); msg.Bool() {
		if name, ok := b.commandName(msg); ok {
			if fn, found := b.commands[name]; found {
				return fn(ctx, b, msg)
			}
		}
	}

	return b.handler.OnUpdate(ctx, b, update)
}

// answerCallback acknowledges a routed callback query so the client's
// progress indicator clears even when the handler sends nothing.
func (b *Bot) answerCallback(ctx context.Context, query obj.Obj) {
	id := query.Field("id").Str()
	if id == "" {
		return
	}
	if _, err := b.client.AnswerCallbackQuery(ctx, id); err != nil {
		b.logger.Warn("answer callback query failed", "error", err)
	}
}

// commandName extracts a routable command from a message. Commands are
// bot_command entities at offset 0; a /cmd@somebot suffix must name this
// bot or the message is left for the catch-all handler.
func (b *Bot) commandName(msg obj.Obj) (string, bool) {
	entities := msg.Field("entities")
	if entities.Len() == 0 {
		return "", false
	}
	first := entities.At(0)
	if first.Field("type").Str() != "bot_command" || first.Field("offset").Int() != 0 {
		return "", false
	}

	text := msg.Field("text").Str()
	length := int(first.Field("length").Int())
	if length < 2 || length > len(text) {
		return "", false
	}

	name := text[1:length]
	if at := strings.IndexByte(name, '@'); at >= 0 {
		mention := name[at+1:]
		name = name[:at]
		if !strings.EqualFold(mention, b.Username()) {
			return "", false
		}
	}
	return strings.ToLower(name), true
}
