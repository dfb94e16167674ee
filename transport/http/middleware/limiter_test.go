package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"guesthouse/infras/otel/mocks"
	"guesthouse/shared/cache"
	"guesthouse/transport/http/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	cfg := testConfig()
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	mw := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cache.NewRedisCache(client, mocks.NewOtel()))
	handler := mw.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		return rec
	}

	first := call("203.0.113.7")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusNoContent, call("203.0.113.7").Code)

	limited := call("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, call("198.51.100.2").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()

	cfg := testConfig()
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 1
	cfg.App.RateLimiter.WindowSeconds = 60

	mw := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cache.NewRedisCache(client, mocks.NewOtel()))
	handler := mw.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
