// ABOUTME: Fixed-window rate limiting and CORS for the mock API
// ABOUTME: Throttles credential endpoints per client IP and answers browser preflights

package mockapi

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// counter tracks requests within a fixed time window.
type counter struct {
	count     int
	expiresAt time.Time
}

// rateLimiter allows limit requests per window for each key
type rateLimiter struct {
	mu           sync.Mutex
	windows      map[string]*counter
	limit        int
	window       time.Duration
	now          func() time.Time
	sweepCounter int
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		windows: make(map[string]*counter),
		limit:   limit,
		window:  window,
		now:     now,
	}
}

// allow reports whether a request for key is permitted, or how long until
// its window resets
func (rl *rateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, exists := rl.windows[key]

	// !now.Before so the boundary instant starts a new window
	if !exists || !now.Before(c.expiresAt) {
		rl.windows[key] = &counter{count: 1, expiresAt: now.Add(rl.window)}

		// Sweep expired entries every 100 new windows
		rl.sweepCounter++
		if rl.sweepCounter >= 100 {
			for k, w := range rl.windows {
				if !now.Before(w.expiresAt) {
					delete(rl.windows, k)
				}
			}
			rl.sweepCounter = 0
		}
		return true, 0
	}

	if c.count < rl.limit {
		c.count++
		return true, 0
	}
	return false, c.expiresAt.Sub(now)
}

// clientIP uses the leftmost X-Forwarded-For address when it parses, else RemoteAddr
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}

// rateLimit throttles by client IP. A nil limiter disables it.
func (s *Server) rateLimit(limiter *rateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			allowed, retryAfter := limiter.allow(key)
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			retrySeconds := int(math.Ceil(retryAfter.Seconds()))
			s.logger.Warn("Rate limit exceeded", "client", key, "path", r.URL.Path, "retry_after", retrySeconds)
			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds))
			writeError(w, "Too many attempts, try again later", http.StatusTooManyRequests)
		})
	}
}

// cors lets a browser storefront on another origin call the API. Preflight
// requests are answered without reaching the router.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
