package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter implements a per-client token bucket. The stack calculator is
// called on every editor keystroke, so the limits here are deliberately
// generous and the check stays O(1).
type RateLimiter struct {
	mu          sync.RWMutex
	clients     map[string]*clientLimiter
	rate        int           // requests per window
	window      time.Duration // time window
	cleanupTick *time.Ticker
	stopCleanup chan struct{}
}

type clientLimiter struct {
	mu         sync.Mutex
	tokens     int
	lastUpdate time.Time
}

// NewRateLimiter creates a new rate limiter allowing rate requests per
// window per client.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:     make(map[string]*clientLimiter),
		rate:        rate,
		window:      window,
		cleanupTick: time.NewTicker(5 * time.Minute),
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// cleanup periodically drops idle client entries to bound memory.
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.mu.Lock()
			now := time.Now()
			for key, limiter := range rl.clients {
				limiter.mu.Lock()
				if now.Sub(limiter.lastUpdate) > time.Hour {
					delete(rl.clients, key)
				}
				limiter.mu.Unlock()
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.cleanupTick.Stop()
	close(rl.stopCleanup)
}

// Allow checks if a request from the given key should be allowed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.RLock()
	limiter, exists := rl.clients[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		// Double-check after acquiring write lock
		limiter, exists = rl.clients[key]
		if !exists {
			limiter = &clientLimiter{
				tokens:     rl.rate,
				lastUpdate: time.Now(),
			}
			rl.clients[key] = limiter
		}
		rl.mu.Unlock()
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(limiter.lastUpdate)

	// Refill tokens based on elapsed time
	if elapsed >= rl.window {
		limiter.tokens = rl.rate
		limiter.lastUpdate = now
	} else {
		tokensToAdd := int(float64(rl.rate) * elapsed.Seconds() / rl.window.Seconds())
		if tokensToAdd > 0 {
			limiter.tokens = min(limiter.tokens+tokensToAdd, rl.rate)
			limiter.lastUpdate = now
		}
	}

	if limiter.tokens > 0 {
		limiter.tokens--
		return true
	}

	return false
}

// GetClientKey extracts a client identifier from the request, preferring
// proxy-forwarded addresses.
func GetClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// RateLimitMiddleware creates a middleware that rate limits requests.
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetClientKey(r)

			if !limiter.Allow(key) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": "rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
