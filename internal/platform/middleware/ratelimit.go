package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// LoginLimitConfig bounds password attempts per client IP.
type LoginLimitConfig struct {
	PerMinute int
	Burst     int
	// IdleTTL drops buckets of clients that stopped trying.
	IdleTTL time.Duration
}

type bucket struct {
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

type loginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   float64
	idle    time.Duration
	now     func() time.Time
}

func newLoginLimiter(cfg LoginLimitConfig) *loginLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &loginLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(cfg.PerMinute) / 60,
		burst:   float64(cfg.Burst),
		idle:    cfg.IdleTTL,
		now:     time.Now,
	}
}

// take reports whether key may proceed and, if not, how many seconds to wait.
func (l *loginLimiter) take(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, last: now, lastSeen: now}
		l.buckets[key] = b
		l.sweep(now)
	}
	b.tokens = math.Min(l.burst, b.tokens+now.Sub(b.last).Seconds()*l.rate)
	b.last = now
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if l.rate <= 0 {
		return false, 60
	}
	return false, int(math.Ceil((1 - b.tokens) / l.rate))
}

func (l *loginLimiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, k)
		}
	}
}

// LoginRateLimit throttles credential checks by client IP. A PerMinute of
// zero disables it.
func LoginRateLimit(cfg LoginLimitConfig) echo.MiddlewareFunc {
	if cfg.PerMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limiter := newLoginLimiter(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, wait := limiter.take(c.RealIP())
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(wait))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts, try again later")
			}
			return next(c)
		}
	}
}
