package server

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// KeyExtractor returns the key requests are grouped by for rate limiting.
type KeyExtractor func(*http.Request) string

// ClientIPKeyExtractor keys requests by client IP. The connection's address is
// used unless it belongs to one of the trusted proxies, in which case the
// nearest untrusted hop in X-Forwarded-For (or X-Real-IP) is used instead.
func ClientIPKeyExtractor(trusted []netip.Prefix) KeyExtractor {
	isTrusted := func(addr netip.Addr) bool {
		for _, p := range trusted {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(r *http.Request) string {
		remote, ok := parseIP(r.RemoteAddr)
		if !ok {
			return r.RemoteAddr
		}
		if !isTrusted(remote) {
			return remote.String()
		}

		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			hops := strings.Split(xff, ",")
			var client netip.Addr
			for i := len(hops) - 1; i >= 0; i-- {
				addr, ok := parseIP(hops[i])
				if !ok {
					break
				}
				client = addr
				if !isTrusted(addr) {
					break
				}
			}
			if client.IsValid() {
				return client.String()
			}
		}

		if addr, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
			return addr.String()
		}
		return remote.String()
	}
}

// parseIP accepts "ip" or "ip:port".
func parseIP(raw string) (netip.Addr, bool) {
	raw = strings.TrimSpace(raw)
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// rateLimiter manages rate limiters for different keys
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		rate:        rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}
}

// getLimiter retrieves or creates a rate limiter for the given key
func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	actual, _ := rl.limiters.LoadOrStore(key, limiter)
	rl.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket has refilled, at most every five minutes.
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware limits requests per key. Requests over the limit get a
// 429 error page with a Retry-After header.
func (s *Server) RateLimitMiddleware(cfg RateLimitConfig, keyExtractor KeyExtractor) func(http.HandlerFunc) http.HandlerFunc {
	rl := newRateLimiter(cfg)

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := keyExtractor(r)
			if key == "" {
				log.Ctx(r.Context()).Warn().Msg("rate limit: unable to extract key, allowing request")
				next(w, r)
				return
			}

			limiter := rl.getLimiter(key)
			if !limiter.Allow() {
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				retryAfter := max(int(delay.Seconds()), 1)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", cfg.Window.String())

				log.Ctx(r.Context()).Warn().
					Str("key", key).
					Int("retry_after", retryAfter).
					Msg("rate limit exceeded")

				s.renderErrorPage(w, r, errorPage{
					Status:  http.StatusTooManyRequests,
					Title:   http.StatusText(http.StatusTooManyRequests),
					Message: "Too many sign-in attempts. Please try again later.",
				})
				return
			}

			next(w, r)
		}
	}
}

// RateLimitByIP limits requests by client IP address. Forwarding headers only
// count when the request arrives through a configured trusted proxy.
func (s *Server) RateLimitByIP(cfg RateLimitConfig) func(http.HandlerFunc) http.HandlerFunc {
	return s.RateLimitMiddleware(cfg, ClientIPKeyExtractor(s.config.GetTrustedProxies()))
}
