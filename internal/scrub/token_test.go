package scrub_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prilive-com/minigram/internal/scrub"
	"github.com/prilive-com/minigram/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromError_RemovesToken(t *testing.T) {
	token := tg.SecretToken("123456:ABC-DEF")
	err := fmt.Errorf(`Post "https://api.telegram.org/bot123456:ABC-DEF/sendMessage": dial tcp: connection refused`)

	scrubbed := scrub.TokenFromError(err, token)
	require.Error(t, scrubbed)
	assert.NotContains(t, scrubbed.Error(), "123456:ABC-DEF")
	assert.Contains(t, scrubbed.Error(), "[REDACTED]")
}

func TestTokenFromError_PreservesChain(t *testing.T) {
	sentinel := errors.New("boom")
	token := tg.SecretToken("123456:ABC-DEF")
	wrapped := fmt.Errorf("call to bot123456:ABC-DEF failed: %w", sentinel)

	scrubbed := scrub.TokenFromError(wrapped, token)
	assert.ErrorIs(t, scrubbed, sentinel)
}

func TestTokenFromError_PassThrough(t *testing.T) {
	assert.NoError(t, scrub.TokenFromError(nil, tg.SecretToken("x:y")))

	clean := errors.New("no token here")
	assert.Same(t, clean, scrub.TokenFromError(clean, tg.SecretToken("x:y")))
	assert.Same(t, clean, scrub.TokenFromError(clean, tg.SecretToken("")))
}
