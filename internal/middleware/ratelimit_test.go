package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sitecms/sitecms/internal/cache"
	"github.com/sitecms/sitecms/pkg/response"
)

func newRateLimitedRouter(store RateStore, limit int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/ping", RateLimit(store, limit, window, "api"), func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.POST("/login", RateLimit(store, limit, window, "auth"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRateLimitMemoryStore(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryRateStore(func() time.Time { return now })
	r := newRateLimitedRouter(store, 2, time.Minute)

	for i := 0; i < 2; i++ {
		w := get(r, http.MethodGet, "/ping")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := get(r, http.MethodGet, "/ping")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, "60", w.Header().Get("Retry-After"))

	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "RATE_LIMIT_EXCEEDED", payload.Error.Code)

	// scopes keep separate budgets
	require.Equal(t, http.StatusNoContent, get(r, http.MethodPost, "/login").Code)

	now = now.Add(61 * time.Second)
	require.Equal(t, http.StatusOK, get(r, http.MethodGet, "/ping").Code)
}

func TestRateLimitRedisStore(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	redisStore := cache.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = redisStore.Close() })

	r := newRateLimitedRouter(NewSharedRateStore(redisStore), 1, time.Minute)

	require.Equal(t, http.StatusOK, get(r, http.MethodGet, "/ping").Code)
	require.Equal(t, http.StatusTooManyRequests, get(r, http.MethodGet, "/ping").Code)

	srv.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusOK, get(r, http.MethodGet, "/ping").Code)
}

func TestMemoryRateStoreSweepsExpiredWindows(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryRateStore(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < sweepEvery-1; i++ {
		_, _, err := store.Increment(ctx, fmt.Sprintf("k%d", i), time.Second)
		require.NoError(t, err)
	}
	require.Equal(t, sweepEvery-1, store.Len())

	now = now.Add(2 * time.Second)
	count, ttl, err := store.Increment(ctx, "fresh", time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, time.Second, ttl)
	require.Equal(t, 1, store.Len())
}

func TestSharedRateStoreNil(t *testing.T) {
	require.Nil(t, NewSharedRateStore(nil))
	r := newRateLimitedRouter(NewSharedRateStore(nil), 1, time.Minute)
	require.Equal(t, http.StatusOK, get(r, http.MethodGet, "/ping").Code)
	require.Equal(t, http.StatusOK, get(r, http.MethodGet, "/ping").Code)
}

type failingRateStore struct{}

func (failingRateStore) Increment(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 0, 0, errors.New("store down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := newRateLimitedRouter(failingRateStore{}, 1, time.Minute)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, get(r, http.MethodGet, "/ping").Code)
	}
}
