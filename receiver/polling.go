package receiver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prilive-com/minigram/internal/syncutil"
	"github.com/prilive-com/minigram/tg"
)

// Invoker issues one generic API call. *sender.Client satisfies this.
// The invoker's transport timeout must exceed the poll timeout, or every
// quiet poll aborts early.
type Invoker interface {
	Invoke(ctx context.Context, method string, params tg.Params) (tg.Response, error)
}

// UpdateSink consumes one update. Sinks run sequentially, in ascending
// update-id order; the offset for an update advances only after its sink
// call returns. A sink error is logged and the loop continues.
type UpdateSink func(ctx context.Context, update tg.Update) error

// ChanSink returns a sink that delivers updates to ch, blocking until the
// channel accepts or ctx is done.
func ChanSink(ch chan<- tg.Update) UpdateSink {
	return func(ctx context.Context, update tg.Update) error {
		select {
		case ch <- update:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// PollingClient long-polls getUpdates and dispatches updates to a sink.
type PollingClient struct {
	invoker Invoker
	sink    UpdateSink
	logger  *slog.Logger

	timeout            int
	limit              int
	maxErrors          int
	errorPause         time.Duration
	allowedUpdates     []string
	deleteWebhookFirst bool

	// The offset cursor is owned by the poll loop; atomic only so
	// Offset() can observe it from other goroutines.
	offset            atomic.Int64
	consecutiveErrors atomic.Int32
	running           atomic.Bool
	stopped           atomic.Bool
	stopCh            chan struct{}
	mu                sync.Mutex // protects stopCh recreation
	wg                sync.WaitGroup
	runErr            atomic.Pointer[error]
}

// PollingOption configures the PollingClient.
type PollingOption func(*PollingClient)

// WithMaxErrors sets maximum consecutive fetch errors before stopping.
func WithMaxErrors(max int) PollingOption {
	return func(c *PollingClient) {
		c.maxErrors = max
	}
}

// WithAllowedUpdates sets the update types to receive.
func WithAllowedUpdates(types []string) PollingOption {
	return func(c *PollingClient) {
		c.allowedUpdates = types
	}
}

// WithDeleteWebhook enables webhook deletion before polling starts.
func WithDeleteWebhook(delete bool) PollingOption {
	return func(c *PollingClient) {
		c.deleteWebhookFirst = delete
	}
}

// WithErrorPause sets the fixed pause between failed fetch iterations.
func WithErrorPause(d time.Duration) PollingOption {
	return func(c *PollingClient) {
		c.errorPause = d
	}
}

// NewPollingClient creates a long polling client dispatching to sink.
func NewPollingClient(
	invoker Invoker,
	sink UpdateSink,
	logger *slog.Logger,
	cfg Config,
	opts ...PollingOption,
) *PollingClient {
	c := &PollingClient{
		invoker:            invoker,
		sink:               sink,
		logger:             logger,
		timeout:            cfg.PollTimeout,
		limit:              cfg.PollLimit,
		maxErrors:          cfg.MaxErrors,
		errorPause:         cfg.ErrorPause,
		allowedUpdates:     cfg.AllowedUpdates,
		deleteWebhookFirst: cfg.DeleteWebhookFirst,
		stopCh:             make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run polls until ctx is done, Stop is called, the token is rejected, or
// the consecutive-error budget runs out. It blocks the calling goroutine.
//
// A nil return means the loop was stopped externally. tg.ErrUnauthorized
// means the credential is invalid and polling cannot continue.
func (c *PollingClient) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return tg.ErrAlreadyRunning
	}
	defer c.running.Store(false)

	c.mu.Lock()
	if c.stopped.Load() {
		c.stopCh = make(chan struct{})
		c.stopped.Store(false)
	}
	c.mu.Unlock()

	if c.deleteWebhookFirst {
		c.logger.Info("deleting existing webhook")
		resp, err := c.invoker.Invoke(ctx, "deleteWebhook", tg.Params{"drop_pending_updates": false})
		if err != nil {
			return fmt.Errorf("delete webhook: %w", err)
		}
		if !resp.Ok() {
			return fmt.Errorf("delete webhook rejected: %s (code=%d)",
				resp.Description(), resp.ErrorCode())
		}
	}

	c.logger.Info("long polling started",
		"timeout", c.timeout,
		"limit", c.limit,
		"max_errors", c.maxErrors,
	)
	defer c.logger.Info("long polling stopped")

	return c.pollLoop(ctx)
}

// Start runs the poll loop in a background goroutine. Use Err to inspect
// why a started loop ended.
func (c *PollingClient) Start(ctx context.Context) {
	syncutil.Go(&c.wg, func() {
		err := c.Run(ctx)
		c.runErr.Store(&err)
	})
}

// Stop signals the loop to exit between iterations and waits for a
// background loop to finish. An in-flight long poll is not interrupted.
func (c *PollingClient) Stop() {
	c.mu.Lock()
	select {
	case <-c.stopCh:
		// Already closed
	default:
		close(c.stopCh)
	}
	c.stopped.Store(true)
	c.mu.Unlock()

	c.wg.Wait()
}

// Running returns true if polling is active.
func (c *PollingClient) Running() bool {
	return c.running.Load()
}

// Err returns the result of the last background Run started via Start.
func (c *PollingClient) Err() error {
	if p := c.runErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Offset returns the current update offset cursor.
func (c *PollingClient) Offset() int64 {
	return c.offset.Load()
}

// ConsecutiveErrors returns the current fetch error count.
func (c *PollingClient) ConsecutiveErrors() int32 {
	return c.consecutiveErrors.Load()
}

func (c *PollingClient) pollLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("polling stopped: context cancelled")
			return nil
		case <-c.stopCh:
			c.logger.Info("polling stopped: stop signal")
			return nil
		default:
		}

		resp, err := c.invoker.Invoke(ctx, "getUpdates", c.pollParams())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if stop := c.recordFetchError(ctx, err); stop {
				return fmt.Errorf("minigram: polling: %w", err)
			}
			continue
		}

		if !resp.Ok() {
			if resp.ErrorCode() == 401 {
				c.logger.Error("polling unauthorized", "description", resp.Description())
				return tg.ErrUnauthorized
			}
			c.logger.Warn("getUpdates rejected",
				"error_code", resp.ErrorCode(),
				"description", resp.Description(),
			)
			if stop := c.recordFetchError(ctx, nil); stop {
				return fmt.Errorf("minigram: polling: getUpdates rejected: %s (code=%d)",
					resp.Description(), resp.ErrorCode())
			}
			continue
		}

		c.consecutiveErrors.Store(0)

		for _, raw := range resp.Result().List() {
			update := tg.WrapUpdate(raw)

			if err := c.sink(ctx, update); err != nil {
				if ctx.Err() != nil {
					// Offset not advanced: this update redelivers on restart.
					return nil
				}
				c.logger.Error("update handler failed",
					"update_id", update.UpdateID(),
					"error", err,
				)
			}

			// Advance only after the sink completed for this update.
			if next := update.UpdateID() + 1; next > c.offset.Load() {
				c.offset.Store(next)
			}
		}
	}
}

func (c *PollingClient) pollParams() tg.Params {
	params := tg.Params{
		"offset":  c.offset.Load(),
		"limit":   c.limit,
		"timeout": c.timeout,
	}
	if len(c.allowedUpdates) > 0 {
		params["allowed_updates"] = c.allowedUpdates
	}
	return params
}

// recordFetchError counts a failed iteration and paces the loop with a
// fixed pause. Returns true when the consecutive-error budget is spent.
func (c *PollingClient) recordFetchError(ctx context.Context, err error) bool {
	errCount := c.consecutiveErrors.Add(1)
	if err != nil {
		c.logger.Error("fetch updates failed",
			"error", err,
			"consecutive_errors", errCount,
		)
	}

	if c.maxErrors > 0 && int(errCount) >= c.maxErrors {
		c.logger.Error("max consecutive errors exceeded", "max_errors", c.maxErrors)
		return true
	}

	select {
	case <-ctx.Done():
	case <-c.stopCh:
	case <-time.After(c.errorPause):
	}
	return false
}
