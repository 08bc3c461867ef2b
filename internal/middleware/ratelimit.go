package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/voxdesk/voxdesk/internal/pkg/response"
)

// rateLimitEntries bounds how many ip/route pairs are tracked at once.
// Entries expire with the window, so the cache stays small under normal load.
const rateLimitEntries = 4096

type rateLimiter struct {
	window time.Duration
	seen   *expirable.LRU[string, time.Time]
}

// RateLimit allows one request per window per client ip and route. Used on
// session bootstrap and upload endpoints, which fan out into external
// embedding calls.
func RateLimit(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := &rateLimiter{
		window: window,
		seen:   expirable.NewLRU[string, time.Time](rateLimitEntries, nil, window),
	}
	return limiter.handle
}

func (l *rateLimiter) handle(c *gin.Context) {
	ip := c.ClientIP()
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{ip, path}, "|")

	if last, ok := l.seen.Get(key); ok && time.Since(last) < l.window {
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("path", path),
		)
		response.Error(c, http.StatusTooManyRequests, "too_many_requests", http.StatusText(http.StatusTooManyRequests))
		return
	}
	l.seen.Add(key, time.Now())
	c.Next()
}
