package middleware

import (
	"net/http"
	"strings"

	"github.com/kiranshivaraju/partscout/internal/api/response"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuth guards the audit routes with a single bearer token whose bcrypt
// hash is configured at startup.
type AdminAuth struct {
	hash []byte
}

// NewAdminAuth creates the middleware. An empty hash disables the admin
// routes: every request is answered with 501.
func NewAdminAuth(hash string) *AdminAuth {
	return &AdminAuth{hash: []byte(hash)}
}

// Enabled reports whether an admin token is configured.
func (a *AdminAuth) Enabled() bool { return len(a.hash) > 0 }

// Authenticate validates the Bearer token against the configured hash.
func (a *AdminAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			response.Error(w, http.StatusNotImplemented,
				"NOT_IMPLEMENTED", "Admin API is not configured", nil)
			return
		}

		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		if bcrypt.CompareHashAndPassword(a.hash, []byte(rawKey)) != nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(setAdmin(r.Context())))
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
