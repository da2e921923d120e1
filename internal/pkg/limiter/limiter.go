/*
Package limiter provides keyed rate limiting built on token buckets (rate.Limiter).

Keys are arbitrary strings: the HTTP middleware keys by client IP, while the
collaboration hub keys code executions by room id. Idle buckets are swept
periodically so the key space does not grow without bound.
*/
package limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"coderoom/internal/pkg/errs"
	"coderoom/internal/pkg/logx"
	"coderoom/internal/pkg/resp"
)

// cleanupInterval is how often idle buckets are removed.
const cleanupInterval = 3 * time.Minute

// KeyedLimiter holds one token bucket per key.
type KeyedLimiter struct {
	// mu protects limits.
	mu sync.RWMutex

	// limits maps a key to its bucket.
	limits map[string]*rate.Limiter

	// r is the refill rate in events per second.
	r rate.Limit

	// b is the bucket size.
	b int

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a KeyedLimiter and starts its background cleanup.
func New(r rate.Limit, b int) *KeyedLimiter {
	l := &KeyedLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
		stop:   make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Get returns the bucket for key, creating it on first use.
func (l *KeyedLimiter) Get(key string) *rate.Limiter {
	l.mu.RLock()
	lim, exists := l.limits[key]
	l.mu.RUnlock()

	if exists {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lim, exists = l.limits[key]
	if !exists {
		lim = rate.NewLimiter(l.r, l.b)
		l.limits[key] = lim
	}
	return lim
}

// Allow consumes one token for key.
func (l *KeyedLimiter) Allow(key string) bool {
	return l.Get(key).Allow()
}

// Stop ends the cleanup goroutine.
func (l *KeyedLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, remaining := l.sweep(time.Now())
			logx.Debug("Rate limiter cleanup finished", "removed", removed, "remaining", remaining)
		case <-l.stop:
			return
		}
	}
}

// sweep drops every bucket that has fully refilled, i.e. has been idle.
func (l *KeyedLimiter) sweep(now time.Time) (removed, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, lim := range l.limits {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(l.limits, key)
			removed++
		}
	}
	return removed, len(l.limits)
}

// ClientIP extracts the host part of the request's remote address.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if ip == "" {
		ip = "unknown_ip"
	}
	return ip
}

// Middleware rejects requests over the per-IP limit with 429.
func (l *KeyedLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}
