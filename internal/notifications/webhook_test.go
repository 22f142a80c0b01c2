package notifications

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshimastsensei/log-momentum/internal/logger"
)

func TestSend_NoWebhook(t *testing.T) {
	s := NewSender("", "TestBot", logger.Discard())
	assert.False(t, s.Enabled(), "should not be enabled with empty URL")
	s.Send(context.Background(), "hello from test")
}

func TestSend_SlackFormat(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "TestBot", logger.Discard())
	require.True(t, s.Enabled())

	s.Send(context.Background(), "bitcoin accel_log +0.1523")

	assert.Equal(t, "TestBot", received["username"])
	assert.Equal(t, "`[TestBot] bitcoin accel_log +0.1523`", received["text"])
}

func TestSend_DiscordFormat(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// URL containing "discord" triggers Discord format
	s := NewSender(srv.URL+"/discord/webhook", "LMRBot", logger.Discard())
	s.Send(context.Background(), "ethereum accel_log -0.2000")

	assert.NotEmpty(t, received["content"])
	assert.Equal(t, "LMRBot", received["username"])
	_, hasText := received["text"]
	assert.False(t, hasText, "Discord payload should not have 'text' field")
}

func TestSend_WebhookError(t *testing.T) {
	s := NewSender("http://localhost:1/bogus", "TestBot", logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Should not panic, just log the error
	s.Send(ctx, "this will fail gracefully")
}

func TestDefaultBotName(t *testing.T) {
	s := NewSender("", "", logger.Discard())
	assert.Equal(t, defaultBotName, s.botName)
}
