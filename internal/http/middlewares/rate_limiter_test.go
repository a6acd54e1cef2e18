package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.Use(rl.RateLimitMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitBurst(t *testing.T) {
	r := limitedRouter(NewRateLimiter(1, 3))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, get(r, "10.0.0.1"), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(r, "10.0.0.1"))

	// buckets are per client
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.2"))
}

func TestPrune(t *testing.T) {
	rl := NewRateLimiter(5, 5)
	now := time.Now()
	rl.limiterFor("a", now)
	rl.limiterFor("b", now.Add(9*time.Minute))

	assert.Equal(t, 0, rl.Prune(now.Add(5*time.Minute)))
	assert.Equal(t, 1, rl.Prune(now.Add(11*time.Minute)))
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "b")
}

func TestRunJanitorStops(t *testing.T) {
	rl := NewRateLimiter(5, 5)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
