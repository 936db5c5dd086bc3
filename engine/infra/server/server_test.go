package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexcellence/jarvis/pkg/config"
)

func newTestRouter(t *testing.T, mutate func(*config.Config)) (*gin.Engine, *Dependencies) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	deps, cleanup, err := NewDependencies(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return buildRouter(context.Background(), cfg, deps), deps
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestRoutes_Health(t *testing.T) {
	t.Run("Should answer the root banner", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := do(r, http.MethodGet, "/", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Jarvis backend opérationnel ✔️", w.Body.String())
	})

	t.Run("Should report missing dependencies as degraded", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := do(r, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"degraded"`)
		assert.Contains(t, w.Body.String(), `"classifier":false`)
		assert.Contains(t, w.Body.String(), `"telegram":false`)
		assert.Contains(t, w.Body.String(), `"sink":false`)
	})

	t.Run("Should report ok when fully configured", func(t *testing.T) {
		r, deps := newTestRouter(t, func(cfg *config.Config) {
			cfg.Classifier.APIKey = "sk-test"
			cfg.Telegram.BotToken = "123:abc"
			cfg.Sink.URL = "https://n8n.example.com/webhook/jarvis"
		})

		w := do(r, http.MethodGet, "/healthz", "")

		assert.True(t, deps.Readiness.Ready())
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})
}

func TestRoutes_Webhook(t *testing.T) {
	t.Run("Should acknowledge updates without a message", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := do(r, http.MethodPost, "/telegram-webhook", `{"update_id": 1}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})

	t.Run("Should answer ok false for invalid JSON", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := do(r, http.MethodPost, "/telegram-webhook", `not json`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":false}`, w.Body.String())
	})

	t.Run("Should enforce the configured body limit", func(t *testing.T) {
		r, _ := newTestRouter(t, func(cfg *config.Config) {
			cfg.Webhook.MaxBody = 64
		})

		w := do(r, http.MethodPost, "/telegram-webhook", `{"message":{"chat":{"id":1},"text":"`+strings.Repeat("x", 256)+`"}}`)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("Should run accepted messages to completion on drain", func(t *testing.T) {
		r, deps := newTestRouter(t, nil)

		w := do(r, http.MethodPost, "/telegram-webhook", `{"message":{"chat":{"id":1},"text":"salut"}}`)
		require.NoError(t, deps.drain(context.Background(), 5*time.Second))

		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})

	t.Run("Should serve the configured webhook path", func(t *testing.T) {
		r, _ := newTestRouter(t, func(cfg *config.Config) {
			cfg.Webhook.Path = "/hooks/telegram"
		})

		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/hooks/telegram", `{}`).Code)
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/telegram-webhook", `{}`).Code)
	})
}

func TestRoutes_Metrics(t *testing.T) {
	t.Run("Should not expose metrics when monitoring is disabled", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/metrics", "").Code)
	})

	t.Run("Should expose pipeline metrics when monitoring is enabled", func(t *testing.T) {
		r, deps := newTestRouter(t, func(cfg *config.Config) {
			cfg.Monitoring.Enabled = true
		})
		do(r, http.MethodPost, "/telegram-webhook", `{"update_id": 1}`)
		require.NoError(t, deps.drain(context.Background(), 5*time.Second))

		w := do(r, http.MethodGet, "/metrics", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "jarvis_webhook_received_total")
		assert.Contains(t, w.Body.String(), "jarvis_http_requests_total")
	})
}

func TestFriendlyHost(t *testing.T) {
	t.Run("Should map wildcard hosts to loopback", func(t *testing.T) {
		assert.Equal(t, "127.0.0.1", friendlyHost("0.0.0.0"))
		assert.Equal(t, "127.0.0.1", friendlyHost(""))
		assert.Equal(t, "example.com", friendlyHost("example.com"))
	})
}
