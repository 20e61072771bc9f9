// Package session holds the per-browser form state: the cascading selection,
// the problem text and the diagnosis state machine
// (idle → submitting → success | failed).
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kiranshivaraju/partscout/internal/ai"
	"github.com/kiranshivaraju/partscout/internal/catalog"
	"github.com/kiranshivaraju/partscout/internal/selector"
	"github.com/kiranshivaraju/partscout/pkg/models"
	"github.com/kiranshivaraju/partscout/pkg/prompt"
)

var (
	ErrSubmissionInProgress = errors.New("a diagnosis is already in progress")
	ErrClosed               = errors.New("session closed")
)

// Phase is the diagnosis state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
)

// NoticeKind classifies a user-visible notice.
type NoticeKind string

const (
	NoticeValidation   NoticeKind = "validation"
	NoticeConnectivity NoticeKind = "connectivity"
	NoticeProvider     NoticeKind = "provider"
	NoticeMalformed    NoticeKind = "malformed_response"
	NoticeTimeout      NoticeKind = "timeout"
	NoticeCanceled     NoticeKind = "canceled"
	NoticeSelection    NoticeKind = "selection"
	NoticeInternal     NoticeKind = "internal"
)

// Notice is a message shown to the user after a refused or failed action.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Diagnoser runs one diagnosis. Implemented by *ai.DiagnosisService.
type Diagnoser interface {
	Diagnose(ctx context.Context, req ai.DiagnoseRequest) (*ai.Outcome, error)
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID            string
	Selection     selector.State
	Problem       string
	Phase         Phase
	Result        *models.DiagnosisResult
	Notice        *Notice
	SubmitEnabled bool
}

// Session is safe for concurrent use. At most one diagnosis runs at a time.
type Session struct {
	id  string
	cat *catalog.Catalog

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	selection selector.State
	problem   string
	phase     Phase
	result    *models.DiagnosisResult
	notice    *Notice
	closed    bool
	touched   time.Time
}

// New creates an idle session over cat.
func New(id string, cat *catalog.Catalog) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:      id,
		cat:     cat,
		ctx:     ctx,
		cancel:  cancel,
		phase:   PhaseIdle,
		touched: time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

// Apply runs a selector action against the session's selection. A refused
// action leaves the selection unchanged and raises a selection notice.
func (s *Session) Apply(a selector.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	next, err := selector.Apply(s.cat, s.selection, a)
	if err != nil {
		s.notice = &Notice{Kind: NoticeSelection, Message: err.Error()}
		return err
	}
	s.selection = next
	if s.notice != nil && s.notice.Kind == NoticeSelection {
		s.notice = nil
	}
	return nil
}

// SetProblem stores the free-text problem description verbatim.
func (s *Session) SetProblem(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	s.problem = text
}

// Submit runs one diagnosis for the current selection and problem.
//
// It returns ErrSubmissionInProgress without side effects while another
// submission is running. An incomplete form raises a validation notice and
// returns a *ai.ValidationError without calling d; the previous result is kept.
// Otherwise the result and notice are cleared and d is called once with a
// context that Close cancels. The session always leaves PhaseSubmitting,
// into PhaseSuccess or PhaseFailed.
func (s *Session) Submit(ctx context.Context, d Diagnoser, version prompt.SchemaVersion) error {
	s.mu.Lock()
	s.touched = time.Now()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.phase == PhaseSubmitting {
		s.mu.Unlock()
		return ErrSubmissionInProgress
	}
	if verr := s.validateLocked(); verr != nil {
		s.notice = NoticeFor(verr)
		s.mu.Unlock()
		return verr
	}

	req := ai.DiagnoseRequest{
		Brand:         s.selection.Brand,
		Model:         s.selection.Model,
		Year:          s.selection.Year,
		Problem:       s.problem,
		SchemaVersion: version,
		SessionID:     s.id,
	}
	s.phase = PhaseSubmitting
	s.result = nil
	s.notice = nil
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			s.finish(nil, fmt.Errorf("diagnosis panicked: %v", r))
			panic(r)
		}
	}()

	out, err := d.Diagnose(runCtx, req)
	s.finish(out, err)
	return err
}

func (s *Session) validateLocked() *ai.ValidationError {
	var fields []string
	if s.selection.Brand == "" {
		fields = append(fields, "brand")
	}
	if s.selection.Model == "" {
		fields = append(fields, "model")
	}
	if s.selection.Year == 0 {
		fields = append(fields, "year")
	}
	if strings.TrimSpace(s.problem) == "" {
		fields = append(fields, "problem")
	}
	if len(fields) == 0 {
		return nil
	}
	return &ai.ValidationError{Fields: fields}
}

func (s *Session) finish(out *ai.Outcome, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || out == nil {
		if err == nil {
			err = errors.New("diagnosis returned no result")
		}
		s.phase = PhaseFailed
		s.result = nil
		s.notice = NoticeFor(err)
		return
	}
	s.phase = PhaseSuccess
	s.result = out.Result
	s.notice = nil
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:            s.id,
		Selection:     s.selection,
		Problem:       s.problem,
		Phase:         s.phase,
		Result:        s.result,
		SubmitEnabled: s.phase != PhaseSubmitting && !s.closed,
	}
	if s.notice != nil {
		n := *s.notice
		snap.Notice = &n
	}
	return snap
}

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Close cancels any in-flight diagnosis and refuses further submissions.
// Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// NoticeFor maps a diagnosis error onto the notice shown to the user.
func NoticeFor(err error) *Notice {
	var verr *ai.ValidationError
	var perr *ai.ProviderError
	switch {
	case errors.As(err, &verr):
		return &Notice{
			Kind:    NoticeValidation,
			Message: fmt.Sprintf("Please fill in all fields before submitting (missing: %s).", strings.Join(verr.Fields, ", ")),
		}
	case errors.As(err, &perr):
		return &Notice{
			Kind:    NoticeProvider,
			Message: fmt.Sprintf("The AI service returned an error (status %d): %s", perr.StatusCode, perr.Body),
		}
	case errors.Is(err, ai.ErrProviderStatus):
		return &Notice{Kind: NoticeProvider, Message: "The AI service returned an error. Please try again."}
	case errors.Is(err, ai.ErrInvalidResponse):
		return &Notice{Kind: NoticeMalformed, Message: "The AI returned a malformed answer. Please try again or rephrase the problem."}
	case errors.Is(err, ai.ErrInferenceTimeout):
		return &Notice{Kind: NoticeTimeout, Message: "The AI service took too long to answer. Please try again."}
	case errors.Is(err, ai.ErrCanceled):
		return &Notice{Kind: NoticeCanceled, Message: "The request was canceled before an answer arrived."}
	case errors.Is(err, ai.ErrProviderUnavailable):
		return &Notice{Kind: NoticeConnectivity, Message: "Could not reach the AI service. Check the connection and try again."}
	default:
		return &Notice{Kind: NoticeInternal, Message: "Something went wrong. Please try again."}
	}
}
