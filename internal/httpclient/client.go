// Package httpclient builds the tuned net/http client shared by the
// sender and receiver. TLS 1.2 minimum, explicit dial/handshake timeouts,
// keep-alive connection reuse across calls.
package httpclient

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Config holds HTTP client configuration.
type Config struct {
	// Timeouts
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	TLSTimeout     time.Duration
	IdleTimeout    time.Duration

	// Connection pool
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
}

// DefaultConfig returns sensible defaults for the Bot API.
func DefaultConfig() Config {
	return Config{
		RequestTimeout:      30 * time.Second,
		ConnectTimeout:      10 * time.Second,
		TLSTimeout:          10 * time.Second,
		IdleTimeout:         90 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		MaxConnsPerHost:     8,
	}
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		TLSHandshakeTimeout:   cfg.TLSTimeout,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.IdleTimeout,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}
}

// NewPolling creates a client for long-poll requests: the total timeout
// must outlast the server-side poll timeout or every quiet poll would
// abort early.
func NewPolling(pollTimeout time.Duration) *http.Client {
	cfg := DefaultConfig()
	cfg.RequestTimeout = pollTimeout + 10*time.Second
	return New(cfg)
}

// DoJSON performs a request with JSON headers.
// Caller is responsible for closing the response body.
func DoJSON(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return client.Do(req.WithContext(ctx))
}

// DoMultipart performs a multipart form request.
// Caller is responsible for closing the response body.
func DoMultipart(ctx context.Context, client *http.Client, req *http.Request, contentType string) (*http.Response, error) {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	return client.Do(req.WithContext(ctx))
}
