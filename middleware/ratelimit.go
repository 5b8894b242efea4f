package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter    *rate.Limiter
	lastActive time.Time
}

var ipLimiters = struct {
	sync.Mutex
	m map[string]*ipLimiter
}{
	m: make(map[string]*ipLimiter),
}

// Entries idle for longer than this are dropped by the cleanup loop.
const limiterIdleTimeout = 2 * time.Hour

func cleanupLimiters() {
	for {
		time.Sleep(time.Hour)
		ipLimiters.Lock()
		now := time.Now()
		for ip, l := range ipLimiters.m {
			if now.Sub(l.lastActive) > limiterIdleTimeout {
				delete(ipLimiters.m, ip)
			}
		}
		ipLimiters.Unlock()
	}
}

// RateLimit applies a per-IP token bucket to every request.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	go cleanupLimiters()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		ipLimiters.Lock()
		l, exists := ipLimiters.m[ip]
		if !exists {
			l = &ipLimiter{limiter: rate.NewLimiter(rps, burst)}
			ipLimiters.m[ip] = l
		}
		l.lastActive = time.Now()
		ipLimiters.Unlock()

		if !l.limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down"})
			c.Abort()
			return
		}

		c.Next()
	}
}
