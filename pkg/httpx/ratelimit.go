package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/safescrow/dashboard/pkg/slogx"
)

// RateLimitConfig allows Requests per Window per key, with bursts up to Burst.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int
}

var (
	// StrictLimit guards credential endpoints against guessing.
	StrictLimit = RateLimitConfig{Requests: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit is for authenticated API calls.
	ModerateLimit = RateLimitConfig{Requests: 60, Window: time.Minute, Burst: 20}
)

// RateLimitFromEnv overrides def from RATELIMIT_<prefix>_REQUESTS,
// RATELIMIT_<prefix>_WINDOW and RATELIMIT_<prefix>_BURST. Invalid or
// non-positive values are ignored.
func RateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	key := "RATELIMIT_" + prefix + "_"

	if n, err := strconv.Atoi(os.Getenv(key + "REQUESTS")); err == nil && n > 0 {
		cfg.Requests = n
	}
	if d, err := time.ParseDuration(os.Getenv(key + "WINDOW")); err == nil && d > 0 {
		cfg.Window = d
	}
	if n, err := strconv.Atoi(os.Getenv(key + "BURST")); err == nil && n > 0 {
		cfg.Burst = n
	}
	return cfg
}

// KeyExtractor groups requests for rate limiting. An empty key bypasses the
// limiter.
type KeyExtractor func(*http.Request) string

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserKey is the authenticated user ID, or "" before AuthnMiddleware.
func UserKey(r *http.Request) string {
	return UserID(r.Context())
}

// JSONFieldKey reads a top-level string field from a JSON body and puts the
// body back for the handler.
func JSONFieldKey(field string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
		if err != nil {
			return ""
		}

		var fields map[string]any
		if json.Unmarshal(body, &fields) != nil {
			return ""
		}
		v, _ := fields[field].(string)
		return strings.ToLower(strings.TrimSpace(v))
	}
}

// CompositeKey joins the non-empty keys of extractors with sep.
func CompositeKey(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, ex := range extractors {
			if k := ex(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, sep)
	}
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiterSet keeps one token bucket per key and forgets keys idle for longer
// than a window.
type limiterSet struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

func newLimiterSet(cfg RateLimitConfig) *limiterSet {
	return &limiterSet{
		limit:     rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:     cfg.Burst,
		idle:      max(cfg.Window, time.Minute),
		entries:   make(map[string]*limiterEntry),
		lastSweep: time.Now(),
	}
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > s.idle {
		for k, e := range s.entries {
			if now.Sub(e.seen) > s.idle {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.seen = now
	return e.lim
}

// RateLimit rejects requests over cfg with 429 and a Retry-After header.
func RateLimit(cfg RateLimitConfig, key KeyExtractor) Middleware {
	set := newLimiterSet(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			lim := set.get(k, now)
			if lim.AllowN(now, 1) {
				next.ServeHTTP(w, r)
				return
			}

			res := lim.ReserveN(now, 1)
			retryAfter := max(int(res.DelayFrom(now).Seconds()), 1)
			res.CancelAt(now)

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests, try again later")
		})
	}
}

// RateLimitByIP limits per client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimit(cfg, ClientIP)
}

// RateLimitByIPAndField limits per client address and JSON body field, e.g.
// login attempts per email.
func RateLimitByIPAndField(cfg RateLimitConfig, field string) Middleware {
	return RateLimit(cfg, CompositeKey(":", ClientIP, JSONFieldKey(field)))
}

// RateLimitByUser limits per authenticated user, falling back to the client
// address.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimit(cfg, func(r *http.Request) string {
		if id := UserKey(r); id != "" {
			return "user:" + id
		}
		return "ip:" + ClientIP(r)
	})
}
