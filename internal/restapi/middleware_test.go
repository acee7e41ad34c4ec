package restapi

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse.transitlab.org/internal/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCompressionMiddleware(t *testing.T) {
	large := strings.Repeat(`{"test": "data"}`, 1000)
	handler := CompressionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(large))
	}))

	t.Run("compresses when gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		reader, err := gzip.NewReader(bytes.NewReader(recorder.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = reader.Close() }()
		body, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, large, string(body))
	})

	t.Run("plain when gzip not accepted", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/test", nil))

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, large, recorder.Body.String())
	})

	t.Run("websocket upgrades pass through", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	recorder := httptest.NewRecorder()
	securityHeaders(okHandler()).ServeHTTP(recorder, httptest.NewRequest("GET", "/test", nil))

	headers := recorder.Header()
	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", headers.Get("Referrer-Policy"))
	assert.Empty(t, headers.Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeadersPreflight(t *testing.T) {
	handler := securityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard/initialize", nil)
	req.Header.Set("Origin", "https://example.com")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", recorder.Header().Get("Access-Control-Allow-Methods"))
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.ForComponent(logging.NewStructuredLogger(&buf, slog.LevelInfo), "http_server")

	handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Same(t, logger, logging.FromContext(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("POST", "/api/dashboard/demo?key=test", nil)
	req.Header.Set("User-Agent", "test-client/1.0")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	output := buf.String()
	assert.Contains(t, output, `"msg":"http_request"`)
	assert.Contains(t, output, `"method":"POST"`)
	assert.Contains(t, output, `"path":"/api/dashboard/demo"`)
	assert.Contains(t, output, `"status":418`)
	assert.Contains(t, output, `"user_agent":"test-client/1.0"`)
	assert.Contains(t, output, `"component":"http_server"`)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimitMiddleware(2, time.Second, "exempt")
	defer rl.Stop()
	handler := rl.Handler(okHandler())

	serve := func(key string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/test?key="+key, nil))
		return recorder
	}

	assert.Equal(t, http.StatusOK, serve("a").Code)
	assert.Equal(t, http.StatusOK, serve("a").Code)
	limited := serve("a")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", limited.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, limited.Body.String(), "Rate limit exceeded")

	assert.Equal(t, http.StatusOK, serve("b").Code, "keys have separate buckets")
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, serve("exempt").Code)
	}
}

func TestRateLimitMiddlewareRefills(t *testing.T) {
	rl := NewRateLimitMiddleware(1, 100*time.Millisecond)
	defer rl.Stop()
	handler := rl.Handler(okHandler())

	serve := func() int {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/test?key=k", nil))
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, serve())
	assert.Equal(t, http.StatusTooManyRequests, serve())
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, http.StatusOK, serve())
}

func TestRateLimitMiddlewareModes(t *testing.T) {
	unlimited := NewRateLimitMiddleware(-1, time.Second)
	defer unlimited.Stop()
	blocked := NewRateLimitMiddleware(0, time.Second)
	defer blocked.Stop()

	recorder := httptest.NewRecorder()
	unlimited.Handler(okHandler()).ServeHTTP(recorder, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	blocked.Handler(okHandler()).ServeHTTP(recorder, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "3600", recorder.Header().Get("Retry-After"))
}

func TestRateLimitThroughApi(t *testing.T) {
	api := createTestApi(t, withRateLimit(2))
	server := serveApi(t, api)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, _ := doRequest(t, server, http.MethodGet, "/api/where/current-time.json?key=TEST")
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
