package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLimitedHandler(t *testing.T, limit int) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	config := RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Minute,
		KeyPrefix:         "rate_limit",
	}

	handler := RateLimitMiddleware(redisClient, config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return handler, mr
}

func send(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("exactly the limit passes, the excess gets 429", prop.ForAll(
		func(limit int, excess int) bool {
			handler, _ := newLimitedHandler(t, limit)

			passed, blocked := 0, 0
			for i := 0; i < limit+excess; i++ {
				switch send(handler, "192.168.1.100:5000").Code {
				case http.StatusOK:
					passed++
				case http.StatusTooManyRequests:
					blocked++
				}
			}
			return passed == limit && blocked == excess
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimit_KeyedByClientIP(t *testing.T) {
	handler, _ := newLimitedHandler(t, 1)

	assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111").Code)
	// same host, different source port
	assert.Equal(t, http.StatusTooManyRequests, send(handler, "10.0.0.1:2222").Code)
	assert.Equal(t, http.StatusOK, send(handler, "10.0.0.2:1111").Code)
}

func TestRateLimit_HeadersAndWindowReset(t *testing.T) {
	handler, mr := newLimitedHandler(t, 2)

	w := send(handler, "10.0.0.1:1111")
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	send(handler, "10.0.0.1:1111")
	w = send(handler, "10.0.0.1:1111")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"Rate limit exceeded"}`, w.Body.String())

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111").Code)
}

func TestRateLimit_FailsOpenWhenRedisIsDown(t *testing.T) {
	handler, mr := newLimitedHandler(t, 1)
	mr.Close()

	assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, send(handler, "10.0.0.1:1111").Code)
}

func TestRateLimit_RestoresMissingExpiry(t *testing.T) {
	handler, mr := newLimitedHandler(t, 10)

	// a counter left without a TTL would otherwise block the client forever
	require.NoError(t, mr.Set("rate_limit:10.0.0.1", "3"))

	w := send(handler, "10.0.0.1:1111")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, time.Minute, mr.TTL("rate_limit:10.0.0.1"))
}
