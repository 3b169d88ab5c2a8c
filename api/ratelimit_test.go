package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/jobportal/jobportal/webutil"
)

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("k", 3, time.Minute), "request %d", i)
	}
	assert.False(t, l.Allow("k", 3, time.Minute))
	assert.True(t, l.Allow("other", 3, time.Minute))
	assert.True(t, l.Allow("", 3, time.Minute))

	l.now = func() time.Time { return base.Add(21 * time.Second) }
	assert.True(t, l.Allow("k", 3, time.Minute))
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimit(NewLocalLimiter(), ipKey("auth"), 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code)
	rec := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get(webutil.HeaderRetryAfter))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2").Code)
}

func TestClientIPAndKeys(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "192.0.2.7", ClientIP(req))
	assert.Equal(t, "apply:192.0.2.7", principalKey("apply")(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req = req.WithContext(webutil.WithPrincipal(req.Context(), webutil.Principal{UserID: "u-1"}))
	assert.Equal(t, "apply:u-1", principalKey("apply")(req))
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	l := NewRedisLimiter(client)
	assert.True(t, l.Allow("k", 1, time.Minute))
	assert.True(t, l.Allow("k", 1, time.Minute))

	var nilLimiter *RedisLimiter
	assert.True(t, nilLimiter.Allow("k", 1, time.Minute))
	assert.Nil(t, NewRedisLimiter(nil))
}
