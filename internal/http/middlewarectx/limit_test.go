package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows requests within burst", func(t *testing.T) {
		h := RateLimitMiddleware(logger, 0.001, 3)(ok)
		for range 3 {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "too many requests")
	})

	t.Run("limit is shared between clients", func(t *testing.T) {
		h := RateLimitMiddleware(logger, 0.001, 1)(ok)

		first := httptest.NewRequest(http.MethodGet, "/test", nil)
		first.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, first)
		assert.Equal(t, http.StatusOK, w.Code)

		second := httptest.NewRequest(http.MethodGet, "/test", nil)
		second.RemoteAddr = "10.0.0.2:1234"
		w = httptest.NewRecorder()
		h.ServeHTTP(w, second)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}
