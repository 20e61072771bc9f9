package middleware

import (
	"context"
	"net"
	"net/http"
)

type contextKey string

const (
	clientIPKey contextKey = "client_ip"
	adminKey    contextKey = "admin"
)

func setClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the caller address used for rate limiting. It prefers the
// value stored by ClientAddr and falls back to the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey, true)
}

// IsAdmin reports whether the request passed admin authentication.
func IsAdmin(r *http.Request) bool {
	ok, _ := r.Context().Value(adminKey).(bool)
	return ok
}

// ClientAddr resolves the client IP once per request and stores it in the
// context. Run it after chi's RealIP so proxy headers are honored.
func ClientAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(setClientIP(r.Context(), ClientIP(r))))
	})
}
