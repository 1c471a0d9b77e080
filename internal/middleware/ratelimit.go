package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const idleVisitorTTL = 3 * time.Minute

// KeyedRateLimiter keeps a token bucket per key (client IP or user ID).
type KeyedRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	r        rate.Limit
	b        int

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{} // closed when cleanup returns
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	l := &KeyedRateLimiter{
		visitors: make(map[string]*visitor),
		r:        r,
		b:        b,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go l.cleanup(time.Minute)
	return l
}

func (l *KeyedRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.r, l.b)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()
	return v.limiter.Allow()
}

// Stop ends the idle-visitor sweep. The limiter keeps working afterwards.
func (l *KeyedRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

func (l *KeyedRateLimiter) cleanup(every time.Duration) {
	defer close(l.done)
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-tick.C:
			l.mu.Lock()
			for k, v := range l.visitors {
				if time.Since(v.lastSeen) > idleVisitorTTL {
					delete(l.visitors, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

// RateLimit limits by client IP.
func RateLimit(limiter *KeyedRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// UserRateLimit limits by authenticated user. Use after AuthRequired.
func UserRateLimit(limiter *KeyedRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetUserID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !limiter.Allow("user:" + key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "too many requests, slow down"})
			return
		}
		c.Next()
	}
}
