package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/stretchr/testify/require"
)

func newRateLimitRouter(window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	limited := router.Group("", RateLimit(window))
	limited.POST("/connect", func(c *gin.Context) { c.Status(http.StatusOK) })
	limited.POST("/upload", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func doFrom(router *gin.Engine, addr, path string) int {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitOnePerWindow(t *testing.T) {
	router := newRateLimitRouter(time.Hour)

	require.Equal(t, http.StatusOK, doFrom(router, "10.0.0.1:1234", "/connect"))
	require.Equal(t, http.StatusTooManyRequests, doFrom(router, "10.0.0.1:1234", "/connect"))

	// Different route and different client each get their own budget.
	require.Equal(t, http.StatusOK, doFrom(router, "10.0.0.1:1234", "/upload"))
	require.Equal(t, http.StatusOK, doFrom(router, "10.0.0.2:1234", "/connect"))
}

func TestRateLimitWindowExpires(t *testing.T) {
	router := newRateLimitRouter(50 * time.Millisecond)

	require.Equal(t, http.StatusOK, doFrom(router, "10.0.0.1:1234", "/connect"))
	require.Equal(t, http.StatusTooManyRequests, doFrom(router, "10.0.0.1:1234", "/connect"))

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, http.StatusOK, doFrom(router, "10.0.0.1:1234", "/connect"))
}

func TestRateLimitDisabled(t *testing.T) {
	router := newRateLimitRouter(0)
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, doFrom(router, "10.0.0.1:1234", "/connect"))
	}
}

func TestRateLimitTrackedKeysBounded(t *testing.T) {
	limiter := &rateLimiter{
		window: time.Hour,
		seen:   expirable.NewLRU[string, time.Time](rateLimitEntries, nil, time.Hour),
	}
	for i := 0; i < rateLimitEntries+512; i++ {
		limiter.seen.Add(fmt.Sprintf("10.%d.%d.%d|/connect", i>>16, (i>>8)&0xff, i&0xff), time.Now())
	}
	require.LessOrEqual(t, limiter.seen.Len(), rateLimitEntries)
}
