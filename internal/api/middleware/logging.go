package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// SessionCookie names the cookie holding the browser session ID.
const SessionCookie = "partscout_session"

// Request scopes reported in access logs.
const (
	ScopeAPI   = "api"
	ScopeAdmin = "admin"
	ScopeUI    = "ui"
)

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Scope classifies a request path as api, admin or ui.
func Scope(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/admin/"), path == "/api/v1/admin":
		return ScopeAdmin
	case strings.HasPrefix(path, "/api/"):
		return ScopeAPI
	default:
		return ScopeUI
	}
}

// Logger writes one access log line per request. Browser requests carry the
// session ID from SessionCookie; API requests carry the matched chi route.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"scope", Scope(r.URL.Path),
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", ClientIP(r),
		}
		if route := routePattern(r); route != "" {
			attrs = append(attrs, "route", route)
		}
		if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
			attrs = append(attrs, "session_id", c.Value)
		}
		slog.Log(r.Context(), level, "request", attrs...)
	})
}

// routePattern returns the chi pattern matched for r, e.g.
// /api/v1/catalog/brands/{brand}/models. Empty outside a chi router.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}
