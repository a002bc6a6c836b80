package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/taskflow/internal/domain"
	"github.com/msomdec/taskflow/internal/service"
)

type contextKey string

const (
	identityContextKey  contextKey = "identity"
	requestIDContextKey contextKey = "request_id"
)

// TokenVerifier validates a bearer token and returns who it was issued to.
type TokenVerifier interface {
	Verify(token string) (service.Identity, error)
}

// IdentityFromContext extracts the authenticated identity from the request
// context. The second result is false outside RequireAuth.
func IdentityFromContext(ctx context.Context) (service.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(service.Identity)
	return id, ok
}

// RequestIDFromContext returns the id assigned by RequestLogger, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// RequireAuth is middleware that protects routes requiring authentication.
// It reads the Authorization bearer token, verifies it, and injects the
// identity into the request context. A missing token is 401; a token that
// fails verification is 403.
func RequireAuth(tokens TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := authenticateRequest(r, tokens)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authenticateRequest(r *http.Request, tokens TokenVerifier) (service.Identity, error) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return service.Identity{}, domain.ErrMissingCredential
	}

	identity, err := tokens.Verify(token)
	if err != nil {
		return service.Identity{}, fmt.Errorf("%w: %w", domain.ErrInvalidCredential, err)
	}
	return identity, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		writeError(w, http.StatusUnauthorized, "missing_credential", "Access token required")
	case errors.Is(err, domain.ErrExpiredToken):
		writeError(w, http.StatusForbidden, "expired_token", "Token has expired")
	default:
		writeError(w, http.StatusForbidden, "invalid_credential", "Invalid or expired token")
	}
}

// RequestLogger assigns each request an id (reusing a sane incoming
// X-Request-ID), echoes it in the response, and logs one line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		ctx := context.WithValue(r.Context(), requestIDContextKey, id)

		next.ServeHTTP(rw, r.WithContext(ctx))

		level := slog.LevelInfo
		if rw.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// SecurityHeaders sets conservative browser security headers on every
// response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// CORS answers cross-origin requests from the configured origins. "*"
// allows any origin.
type CORS struct {
	allowed  map[string]bool
	allowAll bool
}

// NewCORS creates a CORS middleware for the given origins.
func NewCORS(origins []string) *CORS {
	c := &CORS{allowed: make(map[string]bool, len(origins))}
	for _, o := range origins {
		if o == "*" {
			c.allowAll = true
		}
		c.allowed[o] = true
	}
	return c
}

// Handler wraps next. Preflight requests are answered directly.
func (c *CORS) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (c.allowAll || c.allowed[origin]) {
			h := w.Header()
			if c.allowAll {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			h.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
			h.Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Limiter decides whether a request keyed by client address may proceed.
type Limiter interface {
	Allow(key string) bool
}

// RateLimit rejects requests with 429 once the client's budget is spent.
func RateLimit(limiter Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientIP(r)) {
			slog.WarnContext(r.Context(), "rate limit exceeded",
				"request_id", RequestIDFromContext(r.Context()),
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the host part of RemoteAddr. Forwarding headers are not
// trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
