package receiver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prilive-com/minigram/obj"
	"github.com/prilive-com/minigram/receiver"
	"github.com/prilive-com/minigram/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() receiver.Config {
	cfg := receiver.DefaultConfig()
	cfg.PollTimeout = 1
	cfg.MaxErrors = 3
	cfg.ErrorPause = 5 * time.Millisecond
	return cfg
}

// fakeInvoker replays scripted getUpdates envelopes and records the
// params of every call.
type fakeInvoker struct {
	mu      sync.Mutex
	calls   []tg.Params
	methods []string
	replies []reply
}

type reply struct {
	resp tg.Response
	err  error
}

func okUpdates(ids ...int64) reply {
	list := make([]any, 0, len(ids))
	for _, id := range ids {
		list = append(list, map[string]any{"update_id": float64(id)})
	}
	return reply{resp: tg.WrapResponse(obj.New(map[string]any{
		"ok":     true,
		"result": list,
	}))}
}

func apiError(code int64, desc string) reply {
	return reply{resp: tg.WrapResponse(obj.New(map[string]any{
		"ok":          false,
		"error_code":  float64(code),
		"description": desc,
	}))}
}

func (f *fakeInvoker) Invoke(ctx context.Context, method string, params tg.Params) (tg.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, method)
	f.calls = append(f.calls, params)

	if len(f.replies) == 0 {
		// Script exhausted: behave like a quiet long poll until stopped.
		select {
		case <-ctx.Done():
			return tg.Response{}, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
		return okUpdates().resp, nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.resp, r.err
}

func (f *fakeInvoker) getUpdatesCalls() []tg.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tg.Params
	for i, m := range f.methods {
		if m == "getUpdates" {
			out = append(out, f.calls[i])
		}
	}
	return out
}

func TestPolling_HookOrderAndOffset(t *testing.T) {
	invoker := &fakeInvoker{replies: []reply{okUpdates(10, 11, 12)}}

	var seen []int64
	client := receiver.NewPollingClient(invoker, func(ctx context.Context, u tg.Update) error {
		seen = append(seen, u.UpdateID())
		return nil
	}, testLogger(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	require.Eventually(t, func() bool {
		return client.Offset() == 13
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	// Hook invoked exactly once per update, strictly ascending.
	assert.Equal(t, []int64{10, 11, 12}, seen)

	// The poll after the batch asks for offset 13.
	calls := invoker.getUpdatesCalls()
	require.GreaterOrEqual(t, len(calls), 2)
	assert.Equal(t, int64(13), calls[1]["offset"])
}

func TestPolling_FirstPollStartsAtZero(t *testing.T) {
	invoker := &fakeInvoker{}
	client := receiver.NewPollingClient(invoker,
		func(context.Context, tg.Update) error { return nil },
		testLogger(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(invoker.getUpdatesCalls()) >= 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	first := invoker.getUpdatesCalls()[0]
	assert.Equal(t, int64(0), first["offset"])
	assert.Equal(t, 100, first["limit"])
	assert.Equal(t, 1, first["timeout"])
}

func TestPolling_UnauthorizedStopsLoop(t *testing.T) {
	invoker := &fakeInvoker{replies: []reply{apiError(401, "Unauthorized")}}
	client := receiver.NewPollingClient(invoker,
		func(context.Context, tg.Update) error { return nil },
		testLogger(), testConfig())

	err := client.Run(context.Background())
	assert.ErrorIs(t, err, tg.ErrUnauthorized)
	assert.False(t, client.Running())
}

func TestPolling_TransportErrorsExhaustBudget(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	invoker := &fakeInvoker{replies: []reply{
		{err: boom}, {err: boom}, {err: boom},
	}}
	client := receiver.NewPollingClient(invoker,
		func(context.Context, tg.Update) error { return nil },
		testLogger(), testConfig())

	err := client.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(3), client.ConsecutiveErrors())
}

func TestPolling_RejectedFetchContinues(t *testing.T) {
	invoker := &fakeInvoker{replies: []reply{
		apiError(420, "FLOOD_WAIT"),
		okUpdates(7),
	}}

	var seen []int64
	client := receiver.NewPollingClient(invoker, func(ctx context.Context, u tg.Update) error {
		seen = append(seen, u.UpdateID())
		return nil
	}, testLogger(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	require.Eventually(t, func() bool {
		return client.Offset() == 8
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{7}, seen)
}

func TestPolling_SinkErrorAdvancesOffset(t *testing.T) {
	invoker := &fakeInvoker{replies: []reply{okUpdates(5)}}
	client := receiver.NewPollingClient(invoker,
		func(context.Context, tg.Update) error { return errors.New("handler blew up") },
		testLogger(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	require.Eventually(t, func() bool {
		return client.Offset() == 6
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestPolling_StartStop(t *testing.T) {
	invoker := &fakeInvoker{}
	client := receiver.NewPollingClient(invoker,
		func(context.Context, tg.Update) error { return nil },
		testLogger(), testConfig())

	client.Start(context.Background())
	require.Eventually(t, client.Running, time.Second, 5*time.Millisecond)

	client.Stop()
	assert.False(t, client.Running())
	assert.NoError(t, client.Err())

	// Second Run after Stop works (stopCh is recreated).
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()
	require.Eventually(t, client.Running, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestPolling_RunTwiceFails(t *testing.T) {
	invoker := &fakeInvoker{}
	client := receiver.NewPollingClient(invoker,
		func(context.Context, tg.Update) error { return nil },
		testLogger(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()
	require.Eventually(t, client.Running, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, client.Run(ctx), tg.ErrAlreadyRunning)
	cancel()
	require.NoError(t, <-done)
}

func TestPolling_ChanSink(t *testing.T) {
	ch := make(chan tg.Update, 4)
	sink := receiver.ChanSink(ch)

	u := tg.WrapUpdate(obj.New(map[string]any{"update_id": float64(42)}))
	require.NoError(t, sink(context.Background(), u))
	assert.Equal(t, int64(42), (<-ch).UpdateID())

	// Full channel + cancelled context returns the context error.
	full := make(chan tg.Update)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := receiver.ChanSink(full)(ctx, u)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolling_AllowedUpdatesForwarded(t *testing.T) {
	invoker := &fakeInvoker{}
	cfg := testConfig()
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	client := receiver.NewPollingClient(invoker,
		func(context.Context, tg.Update) error { return nil },
		testLogger(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()
	require.Eventually(t, func() bool {
		return len(invoker.getUpdatesCalls()) >= 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	first := invoker.getUpdatesCalls()[0]
	assert.Equal(t, []string{"message", "callback_query"}, first["allowed_updates"])
}
