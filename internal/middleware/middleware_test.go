package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "body too large", http.StatusBadRequest)
			return
		}
		w.Write(body)
	})
}

func TestRequestSizeLimiter(t *testing.T) {
	handler := RequestSizeLimiter(32)(echoHandler())

	t.Run("accepts bodies within the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small payload"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "small payload", w.Body.String())
	})

	t.Run("rejects oversized bodies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 128)))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
}

func rateLimitedHandler(rl *RateLimiter) http.Handler {
	return rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(handler http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterEnforcesBurst(t *testing.T) {
	handler := rateLimitedHandler(NewRateLimiter(1, 3))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1000", ""), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.1:1000", ""))
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	handler := rateLimitedHandler(NewRateLimiter(1, 1))

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1000", ""))
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.1:1000", ""))

	// A different client gets its own budget
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2:1000", ""))
}

func TestRateLimiterUsesForwardedClient(t *testing.T) {
	handler := rateLimitedHandler(NewRateLimiter(1, 1))

	// Same forwarded client through two different proxy addresses
	// shares one budget
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1000", "203.0.113.7, 10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.2:2000", "203.0.113.7, 10.0.0.2"))
}
