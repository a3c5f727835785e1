package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/qs-lzh/movie-favorites/internal/cache"
)

// Limiter takes one token for key. When refused it reports how long the
// caller should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit answers 429 once a client exhausts its bucket for a route.
// Limiter errors let the request through.
func RateLimit(limiter Limiter, capacity int, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cache.MakeRateLimitKey(c.ClientIP(), c.Request.Method, c.FullPath())
		allowed, retry, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(capacity))
		if allowed {
			c.Next()
			return
		}

		secs := int(math.Ceil(retry.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		log.Info("rate limit exceeded", zap.String("key", key), zap.Int("retry_after", secs))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many requests",
			"message":     "Rate limit exceeded, please retry later",
			"retry_after": secs,
		})
	}
}

type localEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LocalLimiter keeps one x/time/rate bucket per key in process memory. It is
// used when no redis is configured.
type LocalLimiter struct {
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	mu       sync.Mutex
	limiters map[string]*localEntry
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewLocalLimiter allows capacity requests per interval with bursts of up to
// capacity. Stop must be called to end the background cleanup.
func NewLocalLimiter(capacity int, interval time.Duration) *LocalLimiter {
	if capacity < 1 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	l := &LocalLimiter{
		limit:    rate.Every(interval / time.Duration(capacity)),
		burst:    capacity,
		idleTTL:  2 * interval,
		limiters: make(map[string]*localEntry),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
	go l.cleanupLoop(interval)
	return l
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := l.now()

	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastAccess = now
	l.mu.Unlock()

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *LocalLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *LocalLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

// cleanup drops buckets that have been idle long enough to be full again.
func (l *LocalLimiter) cleanup() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, entry := range l.limiters {
		if now.Sub(entry.lastAccess) > l.idleTTL {
			delete(l.limiters, key)
		}
	}
}
