package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Idle buckets are swept so the per-client map does not grow without bound
// under client-IP churn. A bucket idle longer than bucketIdleTTL has fully
// refilled anyway, so dropping it loses nothing.
const (
	bucketIdleTTL = 10 * time.Minute
	sweepEvery    = time.Minute
)

// RateLimiter applies a per-client token bucket. Clients are keyed by the
// connection's remote IP; forwarded headers are deliberately ignored since
// they are caller-controlled.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu        sync.Mutex
	buckets   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		buckets:   map[string]*clientBucket{},
		lastSweep: time.Now(),
	}
}

func (l *RateLimiter) bucket(ip string) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepEvery {
		for key, b := range l.buckets {
			if now.Sub(b.lastSeen) >= bucketIdleTTL {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Middleware rejects requests over the limit with 429 and a Retry-After.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := l.bucket(clientIP(r)).Reserve()
		if !res.OK() {
			writeRateLimited(w, 0)
			return
		}
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			writeRateLimited(w, int(delay.Seconds())+1)
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%g", float64(l.rps)))
		next.ServeHTTP(w, r)
	})
}

func writeRateLimited(w http.ResponseWriter, retryAfter int) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
}

// clientIP extracts the remote IP of the connection.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
