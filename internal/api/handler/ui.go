package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/partscout/internal/ai"
	mw "github.com/kiranshivaraju/partscout/internal/api/middleware"
	"github.com/kiranshivaraju/partscout/internal/api/response"
	"github.com/kiranshivaraju/partscout/internal/catalog"
	"github.com/kiranshivaraju/partscout/internal/selector"
	"github.com/kiranshivaraju/partscout/internal/session"
	"github.com/kiranshivaraju/partscout/internal/web"
)

// SessionCookie names the cookie holding the browser session ID.
const SessionCookie = mw.SessionCookie

// UI serves the server-rendered form. Each browser gets its own session,
// identified by SessionCookie.
type UI struct {
	Catalog   *catalog.Catalog
	Sessions  *session.Store
	Diagnoser session.Diagnoser
	Renderer  *web.Renderer
	Currency  string
	Secure    bool
}

// Page handles GET /.
func (u *UI) Page(w http.ResponseWriter, r *http.Request) {
	s := u.session(w, r)

	var buf bytes.Buffer
	if err := u.Renderer.Render(&buf, web.NewPage(u.Catalog, s.Snapshot(), u.Currency)); err != nil {
		slog.Error("rendering page failed", "session_id", s.ID(), "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// Select handles POST /ui/select. A refused action is reported through the
// session notice.
func (u *UI) Select(w http.ResponseWriter, r *http.Request) {
	s := u.session(w, r)

	if err := r.ParseForm(); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid form body", nil)
		return
	}
	a := selector.Action{
		Kind:  selector.ActionKind(r.PostFormValue("kind")),
		Level: selector.Level(r.PostFormValue("level")),
		Value: r.PostFormValue("value"),
	}
	if err := s.Apply(a); err != nil {
		slog.Debug("selection refused", "session_id", s.ID(), "error", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Submit handles POST /ui/submit. It blocks until the diagnosis finishes so
// the redirected page shows the outcome.
func (u *UI) Submit(w http.ResponseWriter, r *http.Request) {
	s := u.session(w, r)

	if err := r.ParseForm(); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid form body", nil)
		return
	}

	// A running diagnosis owns the form; the problem text stays as submitted.
	if s.Snapshot().Phase != session.PhaseSubmitting {
		s.SetProblem(r.PostFormValue("problem"))
	}

	err := s.Submit(r.Context(), u.Diagnoser, 0)
	var verr *ai.ValidationError
	switch {
	case err == nil, errors.As(err, &verr):
	case errors.Is(err, session.ErrSubmissionInProgress):
		slog.Info("duplicate submission ignored", "session_id", s.ID())
	default:
		slog.Info("diagnosis did not succeed", "session_id", s.ID(), "error_kind", ai.Kind(err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// session returns the caller's session, starting a new one and setting the
// cookie when the cookie is missing or names an evicted session.
func (u *UI) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	s, created := u.Sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    s.ID(),
			Path:     "/",
			HttpOnly: true,
			Secure:   u.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}
