package sender

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/minigram/internal/resilience"
	"github.com/prilive-com/minigram/internal/testutil"
	"github.com/prilive-com/minigram/tg"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, server *testutil.MockBotServer, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithBaseURL(server.BaseURL()),
		WithLogger(testLogger()),
		WithRateLimit(0, 0),
	}, opts...)
	client, err := New(testutil.TestToken, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNew_EmptyToken(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, tg.ErrInvalidToken)
}

func TestInvoke_Success(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.On(server.MethodPath("getMe"), func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyUser(w)
	})
	client := newTestClient(t, server)

	resp, err := client.Invoke(context.Background(), "getMe", nil)
	require.NoError(t, err)
	assert.True(t, resp.Ok())
	assert.Equal(t, testutil.TestBotUsername, resp.Result().Field("username").Str())
	assert.True(t, resp.Result().Field("is_bot").Bool())

	capture := server.LastCapture()
	capture.AssertMethod(t, http.MethodPost)
	capture.AssertPath(t, server.MethodPath("getMe"))
	capture.AssertContentType(t, "application/json")
}

func TestInvoke_RejectedCallIsNotAnError(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.On(server.MethodPath("sendMessage"), func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyBadRequest(w, "chat not found")
	})
	client := newTestClient(t, server)

	resp, err := client.Invoke(context.Background(), "sendMessage", tg.Params{
		"chat_id": int64(1),
		"text":    "hi",
	})
	require.NoError(t, err)
	assert.False(t, resp.Ok())
	assert.Equal(t, int64(400), resp.ErrorCode())
	assert.Contains(t, resp.Description(), "chat not found")
}

func TestInvoke_JSONBody(t *testing.T) {
	server := testutil.NewMockServer(t)
	client := newTestClient(t, server)

	_, err := client.Invoke(context.Background(), "sendMessage", tg.Params{
		"chat_id": testutil.TestChatID,
		"text":    "hello",
	})
	require.NoError(t, err)

	capture := server.LastCapture()
	capture.AssertContentType(t, "application/json")
	capture.AssertJSONField(t, "chat_id", float64(testutil.TestChatID))
	capture.AssertJSONField(t, "text", "hello")
}

func TestInvoke_MultipartSelectedForUploads(t *testing.T) {
	server := testutil.NewMockServer(t)
	client := newTestClient(t, server)

	_, err := client.Invoke(context.Background(), "sendDocument", tg.Params{
		"chat_id":  testutil.TestChatID,
		"document": FromBytes([]byte("payload"), "report.txt"),
	})
	require.NoError(t, err)

	capture := server.LastCapture()
	capture.AssertContentType(t, "multipart/form-data")
	assert.Contains(t, capture.BodyString(), `filename="report.txt"`)
	assert.Contains(t, capture.BodyString(), "payload")
}

func TestInvoke_ArbitraryMethodForwarded(t *testing.T) {
	server := testutil.NewMockServer(t)
	client := newTestClient(t, server)

	resp, err := client.Invoke(context.Background(), "someFutureMethod", tg.Params{"flag": true})
	require.NoError(t, err)
	assert.True(t, resp.Ok())
	server.LastCapture().AssertPath(t, server.MethodPath("someFutureMethod"))
}

func TestInvoke_InvalidMethodName(t *testing.T) {
	server := testutil.NewMockServer(t)
	client := newTestClient(t, server)

	for _, method := range []string{"", "send Message", "a/b", "x?y"} {
		_, err := client.Invoke(context.Background(), method, nil)
		assert.Error(t, err, "method %q should be rejected", method)
	}
	assert.Equal(t, 0, server.CaptureCount())
}

func TestInvoke_TransportErrorScrubsToken(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	client, err := New(testutil.TestToken,
		WithBaseURL(deadURL),
		WithLogger(testLogger()),
		WithRateLimit(0, 0),
	)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Invoke(context.Background(), "getMe", nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), testutil.TestToken)
	assert.Contains(t, err.Error(), "[REDACTED]")
}

func TestInvoke_LocalFileErrorBeforeNetwork(t *testing.T) {
	server := testutil.NewMockServer(t)
	client := newTestClient(t, server)

	_, err := client.Invoke(context.Background(), "sendDocument", tg.Params{
		"chat_id":  testutil.TestChatID,
		"document": FromPath("/does/not/exist.bin"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input file")
	assert.Equal(t, 0, server.CaptureCount(), "no request should reach the server")
}

func TestInvoke_NoRetryOnFailure(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.On(server.MethodPath("getMe"), func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyError(w, 500, "Internal Server Error")
	})
	client := newTestClient(t, server)

	resp, err := client.Invoke(context.Background(), "getMe", nil)
	require.NoError(t, err)
	assert.False(t, resp.Ok())
	assert.Equal(t, 1, server.CaptureCount(), "a failed call must not be reissued")
}

func TestInvoke_CircuitOpensAfterTransportFailures(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	client, err := New(testutil.TestToken,
		WithBaseURL(deadURL),
		WithLogger(testLogger()),
		WithRateLimit(0, 0),
		WithBreakerConfig(resilience.BreakerConfig{
			Name:         "test-breaker",
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			Threshold:    1,
			FailureRatio: 1,
			MinRequests:  1,
		}),
	)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Invoke(context.Background(), "getMe", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, tg.ErrCircuitOpen)

	_, err = client.Invoke(context.Background(), "getMe", nil)
	assert.ErrorIs(t, err, tg.ErrCircuitOpen)
}

func TestInvoke_OversizedResponseRejected(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.On(server.MethodPath("getMe"), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.Copy(w, strings.NewReader(`{"ok":true,"result":"`))
		io.CopyN(w, neverEndingReader('a'), maxResponseSize+16)
		io.Copy(w, strings.NewReader(`"}`))
	})
	client := newTestClient(t, server)

	_, err := client.Invoke(context.Background(), "getMe", nil)
	assert.ErrorIs(t, err, tg.ErrResponseTooLarge)
}

type neverEndingReader byte

func (r neverEndingReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}
