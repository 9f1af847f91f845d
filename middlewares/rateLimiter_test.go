package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func limitedRouter(perMinute, burst int) *gin.Engine {
	r := gin.New()
	r.POST("/login", RateLimit(perMinute, burst), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func post(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":40000"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitPerIP(t *testing.T) {
	r := limitedRouter(1, 2)

	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1"))

	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.2"))
}

func TestRateLimitDisabled(t *testing.T) {
	r := limitedRouter(0, 0)
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1"))
	}
}

func TestRateLimiterEvictsIdleIPs(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Second), 1, time.Minute)
	clock := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	rl.lastSweep = clock

	first := rl.GetLimiter("10.0.0.1")
	rl.GetLimiter("10.0.0.2")
	assert.Equal(t, 2, rl.Len())

	clock = clock.Add(30 * time.Second)
	assert.Same(t, first, rl.GetLimiter("10.0.0.1"))

	// 10.0.0.2 has been idle past the ttl, 10.0.0.1 has not.
	clock = clock.Add(45 * time.Second)
	rl.GetLimiter("10.0.0.3")
	assert.Equal(t, 2, rl.Len())
	assert.Same(t, first, rl.GetLimiter("10.0.0.1"))

	clock = clock.Add(5 * time.Minute)
	rl.GetLimiter("10.0.0.4")
	assert.Equal(t, 1, rl.Len())
	assert.NotSame(t, first, rl.GetLimiter("10.0.0.1"))
}
