package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/partscout/internal/api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock Cache ---

type mockCache struct {
	counter int64
	err     error
	keys    []string
}

func (m *mockCache) Ping(_ context.Context) error { return nil }
func (m *mockCache) Close() error                 { return nil }
func (m *mockCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.keys = append(m.keys, key)
	m.counter++
	return m.counter, m.err
}

// --- helpers ---

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func hashKey(t *testing.T, rawKey string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func errBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"].(map[string]any)
}

// ========================================
// Admin Auth Middleware Tests
// ========================================

func TestAdminAuth_NotConfigured(t *testing.T) {
	auth := mw.NewAdminAuth("")
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.False(t, auth.Enabled())
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "NOT_IMPLEMENTED", errBody(t, w)["code"])
}

func TestAdminAuth_MissingAuthHeader(t *testing.T) {
	auth := mw.NewAdminAuth(hashKey(t, "ps_admin_secret"))
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", errBody(t, w)["code"])
}

func TestAdminAuth_InvalidBearerFormat(t *testing.T) {
	auth := mw.NewAdminAuth(hashKey(t, "ps_admin_secret"))
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuth_WrongToken(t *testing.T) {
	auth := mw.NewAdminAuth(hashKey(t, "ps_admin_secret"))
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer ps_wrong_secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", errBody(t, w)["code"])
}

func TestAdminAuth_ValidToken(t *testing.T) {
	auth := mw.NewAdminAuth(hashKey(t, "ps_admin_secret"))

	var admin bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin = mw.IsAdmin(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := auth.Authenticate(inner)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "bearer ps_admin_secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, admin)
}

// ========================================
// Rate Limit Middleware Tests
// ========================================

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	mc := &mockCache{counter: 0}
	rl := mw.NewRateLimit(mc, "diagnose", 10)
	handler := rl.Limit(okHandler())

	req := httptest.NewRequest("POST", "/test", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, []string{"partscout:ratelimit:diagnose:203.0.113.7"}, mc.keys)
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	mc := &mockCache{counter: 10} // next IncrWithExpiry will return 11
	rl := mw.NewRateLimit(mc, "diagnose", 10)
	handler := rl.Limit(okHandler())

	req := httptest.NewRequest("POST", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errBody(t, w)["code"])
}

func TestRateLimit_CacheError_FailsOpen(t *testing.T) {
	mc := &mockCache{err: errors.New("redis down")}
	rl := mw.NewRateLimit(mc, "diagnose", 1)
	handler := rl.Limit(okHandler())

	req := httptest.NewRequest("POST", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_DefaultLimit(t *testing.T) {
	rl := mw.NewRateLimit(&mockCache{}, "ui", 0)
	handler := rl.Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/test", nil))

	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
}

func TestClientAddr_UsesRemoteHost(t *testing.T) {
	var got string
	handler := mw.ClientAddr(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = mw.ClientIP(r)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "198.51.100.4:4000"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.4", got)
}

// ========================================
// CORS Middleware Tests
// ========================================

func TestCORS_SetsHeaders(t *testing.T) {
	handler := mw.CORS("https://shop.example")(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	handler := mw.CORS("")(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)
}

// ========================================
// Recovery Middleware Tests
// ========================================

func TestRecovery_CatchesPanic(t *testing.T) {
	panicking := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("something went wrong")
	})
	handler := mw.Recovery(panicking)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errBody(t, w)["code"])
}

func TestRecovery_PanicAfterWriteKeepsResponse(t *testing.T) {
	partial := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		panic("late failure")
	})
	handler := mw.Logger(mw.Recovery(partial))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}

func TestRecovery_NoPanic(t *testing.T) {
	handler := mw.Recovery(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ========================================
// Logging and Tracing Middleware Tests
// ========================================

func TestLogger_SetsStatus(t *testing.T) {
	handler := mw.Logger(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// captureLogs routes the default slog logger into a buffer for one test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestLogger_DomainFields(t *testing.T) {
	logs := captureLogs(t)

	r := chi.NewRouter()
	r.Use(mw.Logger)
	r.Get("/api/v1/catalog/brands/{brand}/models", okHandler())

	req := httptest.NewRequest("GET", "/api/v1/catalog/brands/Audi/models", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	req.AddCookie(&http.Cookie{Name: mw.SessionCookie, Value: "sess-123"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	entry := lastLogLine(t, logs)
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "api", entry["scope"])
	assert.Equal(t, "/api/v1/catalog/brands/{brand}/models", entry["route"])
	assert.Equal(t, "sess-123", entry["session_id"])
	assert.Equal(t, "203.0.113.9", entry["client_ip"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
}

func TestLogger_NoSessionCookie(t *testing.T) {
	logs := captureLogs(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	mw.Logger(okHandler()).ServeHTTP(w, req)

	entry := lastLogLine(t, logs)
	assert.Equal(t, "ui", entry["scope"])
	assert.NotContains(t, entry, "session_id")
	assert.NotContains(t, entry, "route")
}

func TestLogger_RecordsRecoveredPanic(t *testing.T) {
	logs := captureLogs(t)

	panicking := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	})
	handler := mw.Logger(mw.Recovery(panicking))

	req := httptest.NewRequest("POST", "/ui/submit", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	entry := lastLogLine(t, logs)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(http.StatusInternalServerError), entry["status"])
}

func TestScope(t *testing.T) {
	tests := map[string]string{
		"/api/v1/admin/submissions": mw.ScopeAdmin,
		"/api/v1/admin":             mw.ScopeAdmin,
		"/api/v1/diagnose":          mw.ScopeAPI,
		"/api/v1/administrator":     mw.ScopeAPI,
		"/":                         mw.ScopeUI,
		"/ui/select":                mw.ScopeUI,
	}
	for path, want := range tests {
		assert.Equal(t, want, mw.Scope(path), path)
	}
}

func TestTracing_PassesThrough(t *testing.T) {
	handler := mw.Tracing("partscout")(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
