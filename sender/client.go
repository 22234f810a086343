package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/prilive-com/minigram/internal/httpclient"
	"github.com/prilive-com/minigram/internal/resilience"
	"github.com/prilive-com/minigram/internal/scrub"
	"github.com/prilive-com/minigram/internal/validate"
	"github.com/prilive-com/minigram/obj"
	"github.com/prilive-com/minigram/tg"
)

const maxResponseSize = 10 << 20 // 10MB

// Client issues Bot API calls. Safe for concurrent use: the only shared
// state is the read-only credential, the HTTP client, the rate limiter,
// and the circuit breaker, all internally synchronized.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *resilience.Limiter
	breaker    *gobreaker.CircuitBreaker[tg.Response]
	breakerCfg resilience.BreakerConfig
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBaseURL sets the API base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.config.BaseURL = url
	}
}

// WithRequestTimeout sets the transport-level timeout for each call.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.config.RequestTimeout = d
	}
}

// WithRateLimit sets global rate limiting. A non-positive rps disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.config.GlobalRPS = rps
		c.config.GlobalBurst = burst
	}
}

// WithBreakerConfig configures the circuit breaker.
func WithBreakerConfig(cfg resilience.BreakerConfig) Option {
	return func(c *Client) {
		c.breakerCfg = cfg
	}
}

// New creates a new Client with the given token and options.
func New(token string, opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Token = tg.SecretToken(token)
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig creates a Client from a Config.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Token.IsEmpty() {
		return nil, tg.ErrInvalidToken
	}

	c := &Client{config: cfg}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.httpClient == nil {
		hc := httpclient.DefaultConfig()
		hc.RequestTimeout = c.config.RequestTimeout
		hc.MaxIdleConns = c.config.MaxIdleConns
		hc.IdleTimeout = c.config.IdleTimeout
		c.httpClient = httpclient.New(hc)
	}

	c.limiter = resilience.NewLimiter(resilience.LimiterConfig{
		RPS:   c.config.GlobalRPS,
		Burst: c.config.GlobalBurst,
	})

	if c.breakerCfg.Name == "" {
		c.breakerCfg = resilience.DefaultBreakerConfig("minigram-sender")
		c.breakerCfg.MaxRequests = c.config.BreakerMaxRequests
		c.breakerCfg.Interval = c.config.BreakerInterval
		c.breakerCfg.Timeout = c.config.BreakerTimeout
	}
	c.breakerCfg.IsSuccessful = isBreakerSuccess
	if c.breakerCfg.OnStateChange == nil {
		c.breakerCfg.OnStateChange = func(name, from, to string) {
			c.logger.Info("circuit breaker state changed",
				"name", name,
				"from", from,
				"to", to,
			)
		}
	}
	c.breaker = resilience.NewBreaker[tg.Response](c.breakerCfg)

	return c, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	if t, ok := c.httpClient.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
	return nil
}

// Invoke calls a remote method by name. The name is forwarded verbatim as
// the request path segment, so unrecognized methods dispatch fine.
//
// The returned error covers only transport and local failures; a rejected
// call comes back as a Response with Ok() == false and is never an error.
// Failed calls are not retried.
func (c *Client) Invoke(ctx context.Context, method string, params tg.Params) (tg.Response, error) {
	if err := validate.Method(method); err != nil {
		return tg.Response{}, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return tg.Response{}, err
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (tg.Response, error) {
		return c.doRequest(ctx, method, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return tg.Response{}, fmt.Errorf("%w: %w", tg.ErrCircuitOpen, err)
		}
		return tg.Response{}, err
	}

	c.logger.Debug("api call",
		"method", method,
		"ok", resp.Ok(),
		"duration", time.Since(start),
	)

	return resp, nil
}

func (c *Client) doRequest(ctx context.Context, method string, params tg.Params) (tg.Response, error) {
	url := fmt.Sprintf("%s/bot%s/%s", c.config.BaseURL, c.config.Token.Value(), method)

	// Splitting params also opens any path-based files, so an unreadable
	// file aborts here, before any network I/O.
	multipartReq, err := BuildMultipartRequest(params)
	if err != nil {
		return tg.Response{}, fmt.Errorf("minigram: %s: build request: %w", method, err)
	}

	var resp *http.Response

	if multipartReq.HasUploads() {
		var body bytes.Buffer
		encoder := NewMultipartEncoder(&body)
		if err := encoder.Encode(multipartReq); err != nil {
			return tg.Response{}, fmt.Errorf("minigram: %s: encode multipart: %w", method, err)
		}
		if err := encoder.Close(); err != nil {
			return tg.Response{}, fmt.Errorf("minigram: %s: close multipart: %w", method, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
		if err != nil {
			return tg.Response{}, fmt.Errorf("minigram: %s: create request: %w", method, err)
		}
		resp, err = httpclient.DoMultipart(ctx, c.httpClient, req, encoder.ContentType())
		if err != nil {
			return tg.Response{}, fmt.Errorf("minigram: %s: request failed: %w",
				method, scrub.TokenFromError(err, c.config.Token))
		}
	} else {
		payload := params
		if payload == nil {
			payload = tg.Params{}
		}
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return tg.Response{}, fmt.Errorf("minigram: %s: marshal request: %w", method, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return tg.Response{}, fmt.Errorf("minigram: %s: create request: %w", method, err)
		}
		resp, err = httpclient.DoJSON(ctx, c.httpClient, req)
		if err != nil {
			return tg.Response{}, fmt.Errorf("minigram: %s: request failed: %w",
				method, scrub.TokenFromError(err, c.config.Token))
		}
	}
	defer resp.Body.Close()

	// Read maxResponseSize+1 to detect overflow without a false positive.
	limitedReader := io.LimitReader(resp.Body, maxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return tg.Response{}, fmt.Errorf("minigram: %s: read response: %w", method, err)
	}
	if int64(len(body)) > maxResponseSize {
		return tg.Response{}, tg.ErrResponseTooLarge
	}

	envelope, err := obj.FromJSON(body)
	if err != nil {
		return tg.Response{}, fmt.Errorf("minigram: %s: parse response: %w", method, err)
	}

	return tg.WrapResponse(envelope), nil
}

// isBreakerSuccess decides what counts as a circuit breaker failure.
// Application-level rejections return nil error here, so only transport
// failures (connect, TLS, malformed responses) trip the breaker.
// Context cancellation is the caller's doing, not service degradation.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
