package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/partscout/internal/api/middleware"
	"github.com/kiranshivaraju/partscout/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	AdminAuth     *mw.AdminAuth
	DiagnoseLimit *mw.RateLimit
	UILimit       *mw.RateLimit
	CORSOrigin    string
	ServiceName   string

	HealthHandler http.HandlerFunc

	ListBrands       http.HandlerFunc
	ListModels       http.HandlerFunc
	ListYears        http.HandlerFunc
	SelectionHandler http.HandlerFunc
	DiagnoseHandler  http.HandlerFunc

	ListSubmissions http.HandlerFunc
	GetSubmission   http.HandlerFunc

	UIPage   http.HandlerFunc
	UISelect http.HandlerFunc
	UISubmit http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(mw.ClientAddr)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.CORS(deps.CORSOrigin))

		r.Get("/health", orNotImplemented(deps.HealthHandler))

		r.Get("/catalog/brands", orNotImplemented(deps.ListBrands))
		r.Get("/catalog/brands/{brand}/models", orNotImplemented(deps.ListModels))
		r.Get("/catalog/brands/{brand}/models/{model}/years", orNotImplemented(deps.ListYears))
		r.Post("/selection", orNotImplemented(deps.SelectionHandler))

		r.With(limit(deps.DiagnoseLimit)).Post("/diagnose", orNotImplemented(deps.DiagnoseHandler))

		// Admin routes. Without an AdminAuth they answer 501.
		adminAuth := deps.AdminAuth
		if adminAuth == nil {
			adminAuth = mw.NewAdminAuth("")
		}
		r.Group(func(r chi.Router) {
			r.Use(adminAuth.Authenticate)
			r.Get("/admin/submissions", orNotImplemented(deps.ListSubmissions))
			r.Get("/admin/submissions/{id}", orNotImplemented(deps.GetSubmission))
		})
	})

	// Browser form
	r.Get("/", orNotImplemented(deps.UIPage))
	r.Post("/ui/select", orNotImplemented(deps.UISelect))
	r.With(limit(deps.UILimit)).Post("/ui/submit", orNotImplemented(deps.UISubmit))

	serviceName := deps.ServiceName
	if serviceName == "" {
		serviceName = "partscout"
	}
	return mw.Tracing(serviceName)(r)
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *mw.RateLimit) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Limit
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
