package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"nestflow/internal/config"

	"golang.org/x/time/rate"
)

const visitorIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client address and forgets
// clients idle longer than visitorIdleTTL.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	cfg       config.APIRateLimitConfig
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(cfg config.APIRateLimitConfig) *rateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &rateLimiter{
		visitors: make(map[string]*visitor),
		cfg:      cfg,
		now:      time.Now,
	}
}

func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > visitorIdleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorIdleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.cfg.RPS), l.cfg.Burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Wrap answers 429 once a client drains its bucket. RPS <= 0 disables throttling.
func (l *rateLimiter) Wrap(next http.Handler) http.Handler {
	if l.cfg.RPS <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientKey(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey is the peer IP; proxies headers are not trusted.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	return r.RemoteAddr
}
