package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/victor-uk/expense-tracker/internal/apperr"
	"github.com/victor-uk/expense-tracker/internal/auth"
	"github.com/victor-uk/expense-tracker/internal/log"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyClaims
)

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return claims
}

// withMiddleware adds request tracing, logging, rate limiting and security
// headers around a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := newRequestID()

		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			"method", r.Method,
			"url", r.URL.Path,
			log.FieldClientIP, clientIP)

		if !s.rateLimiter.allow(clientIP) {
			s.logger.Warn("Rate limit exceeded", log.FieldClientIP, clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded, retry later", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rec.status,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

// withAuth verifies the bearer token and stores the claims in the request
// context. Missing or invalid credentials end the request with 403.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return s.withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		raw, err := auth.ExtractBearer(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, apperr.New(apperr.CodeUnauthorized, "missing bearer token"))
			return
		}

		claims, err := s.tokens.Verify(raw)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
		next(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code written by a handler for the
// completion log line.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func newRequestID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(buf[:])
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const (
	rateLimitWindow   = time.Minute
	rateLimitMax      = 120
	visitorStaleAfter = 10 * time.Minute
)

// rateLimiter counts requests per client over a fixed window. Counters for
// clients not seen within visitorStaleAfter are evicted in the background.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	windowStart time.Time
	count       int
	seen        time.Time
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		done:     make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[clientIP]
	if !ok || now.Sub(v.windowStart) > rateLimitWindow {
		rl.visitors[clientIP] = &visitor{windowStart: now, count: 1, seen: now}
		return true
	}

	v.count++
	v.seen = now
	return v.count <= rateLimitMax
}

func (rl *rateLimiter) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.evictStale(now)
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) evictStale(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if now.Sub(v.seen) > visitorStaleAfter {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() {
		close(rl.done)
	})
}
