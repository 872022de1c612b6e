package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/ratelimit"
)

// LoginRoute is rate limited like the public forms, usually with a stricter
// policy of its own.
const LoginRoute = "/api/auth/login"

type RateLimiter interface {
	Allow(ctx context.Context, route, client string) (ratelimit.Decision, error)
}

// publicSubmissions are the unauthenticated write endpoints.
var publicSubmissions = map[string]bool{
	"/api/contact":          true,
	"/api/service-requests": true,
	"/api/job-applications": true,
	"/api/testimonials":     true,
	LoginRoute:              true,
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shouldRateLimit(r) {
			next.ServeHTTP(w, r)
			return
		}

		route := strings.TrimSuffix(r.URL.Path, "/")
		client := clientIP(r)

		decision, err := s.rateLimiter.Allow(r.Context(), route, client)
		if err != nil {
			s.logger.Warn("rate limiter check failed", zap.String("route", route), zap.String("client", client), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if decision.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		if decision.Allowed {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfterSeconds()))
		s.metrics.rateLimitRejected.WithLabelValues(route).Inc()
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})
}

func shouldRateLimit(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	return publicSubmissions[strings.TrimSuffix(r.URL.Path, "/")]
}

// clientIP prefers the first X-Forwarded-For hop, as the API runs behind a
// reverse proxy in production.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
