package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4000"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterBlocksAfterBudget(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()
	r := rateLimitedRouter(rl)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r))
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(r))
}

func TestRateLimiterRefillsAfterInterval(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	r := rateLimitedRouter(rl)

	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusTooManyRequests, hit(r))

	rl.mu.Lock()
	for _, v := range rl.visitors {
		v.lastSeen = time.Now().Add(-2 * rl.interval)
	}
	rl.mu.Unlock()

	assert.Equal(t, http.StatusOK, hit(r))
}

func TestRateLimiterCleanupEvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	r := rateLimitedRouter(rl)

	hit(r)
	rl.mu.Lock()
	assert.Len(t, rl.visitors, 1)
	for _, v := range rl.visitors {
		v.lastSeen = time.Now().Add(-10 * time.Minute)
	}
	rl.mu.Unlock()

	rl.cleanup()

	rl.mu.Lock()
	assert.Empty(t, rl.visitors)
	rl.mu.Unlock()
}

func TestRateLimiterStopEndsCleanupLoop(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()

	select {
	case <-rl.done:
	default:
		t.Fatal("done channel still open after Stop")
	}
	// Limiting still works after Stop.
	r := rateLimitedRouter(rl)
	assert.Equal(t, http.StatusOK, hit(r))
}
