package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	limiterSweepEvery = 5 * time.Minute
	limiterStaleAfter = 10 * time.Minute
)

// ipLimiter is a per-client token bucket. Stale clients are swept lazily on
// the request path so the limiter holds no background goroutine.
type ipLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientBucket
	rate      float64
	burst     float64
	lastSweep time.Time
}

type clientBucket struct {
	tokens float64
	seen   time.Time
}

func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	return &ipLimiter{
		clients:   make(map[string]*clientBucket),
		rate:      perSecond,
		burst:     float64(burst),
		lastSweep: time.Now(),
	}
}

// take consumes one token for ip. When the bucket is empty it reports how
// long until the next token accrues.
func (l *ipLimiter) take(ip string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > limiterSweepEvery {
		l.sweep(now)
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &clientBucket{tokens: l.burst, seen: now}
		l.clients[ip] = c
	}
	c.tokens = math.Min(l.burst, c.tokens+now.Sub(c.seen).Seconds()*l.rate)
	c.seen = now

	if c.tokens < 1 {
		retryAfter := time.Duration((1 - c.tokens) / l.rate * float64(time.Second))
		return false, retryAfter
	}
	c.tokens--
	return true, 0
}

func (l *ipLimiter) sweep(now time.Time) {
	for ip, c := range l.clients {
		if now.Sub(c.seen) > limiterStaleAfter {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit sheds request floods per client IP with 429 and a Retry-After
// hint. It fronts the public check-in and assessment endpoints; requests are
// rejected immediately, never queued, so a flood cannot delay a real
// assessment behind it.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := newIPLimiter(perSecond, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := limiter.take(clientIP(r), time.Now())
			if !ok {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the address resolved by chi's RealIP middleware.
func clientIP(r *http.Request) string {
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
