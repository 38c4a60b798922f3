package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/glowdesk/scheduling/internal/tenancy"
)

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleEviction  = 10 * time.Minute
)

// RateLimiter throttles booking traffic with a token bucket per
// client. Buckets refill continuously at the configured rate up to the
// burst size.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	rate      float64 // tokens per second
	burst     float64
	lastSweep time.Time
}

type tokenBucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter creates a limiter allowing rate requests per second
// with the given burst per client key.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets:   make(map[string]*tokenBucket),
		rate:      rate,
		burst:     float64(burst),
		lastSweep: time.Now(),
	}
}

// Take consumes one token for the key. When the bucket is empty it
// returns false and how long until the next token refills.
func (rl *RateLimiter) Take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweep(now)

	b, ok := rl.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: rl.burst}
		rl.buckets[key] = b
	} else {
		b.tokens = math.Min(rl.burst, b.tokens+now.Sub(b.seen).Seconds()*rl.rate)
	}
	b.seen = now

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) / rl.rate * float64(time.Second))
		return false, wait
	}
	b.tokens--
	return true, 0
}

// sweep drops buckets idle long enough to have fully refilled anyway.
// Runs inline under the lock; no background goroutine to stop.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < bucketSweepInterval {
		return
	}
	rl.lastSweep = now
	for key, b := range rl.buckets {
		if now.Sub(b.seen) > bucketIdleEviction {
			delete(rl.buckets, key)
		}
	}
}

// RateLimit rejects clients exceeding the configured rate with a 429
// and a Retry-After hint. Buckets are keyed by tenant plus caller IP
// so one salon's booking-widget burst cannot drain another salon's
// quota. Mount after the tenant middleware.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := limiter.Take(clientKey(r))
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error": "rate_limited", "message": "too many booking requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	ip := r.RemoteAddr
	// Prefer X-Real-Ip set by chi's RealIP middleware.
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		ip = xri
	}
	tenant, _ := tenancy.TenantIDFromContext(r.Context())
	return tenant + "|" + ip
}
