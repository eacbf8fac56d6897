package server

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// limiterCleanupInterval is how often idle client limiters are swept
	limiterCleanupInterval = 5 * time.Minute
	// limiterTTL is how long a client limiter survives without requests
	limiterTTL = 10 * time.Minute
)

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	limiters          map[string]*limiterEntry
	mu                sync.Mutex
	perSecond         float64
	requestsPerMinute int
	burst             int
	now               func() time.Time
	stopCh            chan struct{}
	stopOnce          sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter starts a limiter allowing requestsPerMinute with the given
// burst per client. Call Stop to end the cleanup goroutine.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters:          make(map[string]*limiterEntry),
		perSecond:         float64(requestsPerMinute) / 60.0,
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		now:               time.Now,
		stopCh:            make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow reports whether key may make a request now. When it may not, the
// returned duration is the wait until the next token.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, exists := rl.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rl.perSecond), rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now

	if entry.limiter.AllowN(now, 1) {
		return true, 0
	}

	missing := 1 - entry.limiter.TokensAt(now)
	return false, time.Duration(missing / rl.perSecond * float64(time.Second))
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCh:
			return
		}
	}
}

// sweep drops limiters idle for longer than limiterTTL.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddress(r)
		allowed, wait := rl.Allow(client)
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.requestsPerMinute))
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := int(math.Ceil(wait.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))

		requestLogger(logger, r).Warn("rate limit exceeded",
			zap.String("op", "server.RateLimiter"),
			zap.String("client", client),
			zap.Int("retry_after", retryAfter),
		)
		writeJSON(logger, w, http.StatusTooManyRequests, errorResponse{
			Error: fmt.Sprintf("too many requests, retry after %d seconds", retryAfter),
		})
	})
}

// clientAddress keys limiters by the remote IP without its port.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
