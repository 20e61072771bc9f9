package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/partscout/internal/catalog"
	"github.com/kiranshivaraju/partscout/pkg/models"
	"github.com/kiranshivaraju/partscout/pkg/prompt"
	"golang.org/x/time/rate"
)

// maxLoggedRaw bounds the raw reply text written to the log on a parse failure.
const maxLoggedRaw = 4000

// SubmissionRecorder persists the audit row of a diagnosis attempt.
type SubmissionRecorder interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) error
}

// DiagnoseRequest holds the captured form fields for one diagnosis.
type DiagnoseRequest struct {
	Brand         string
	Model         string
	Year          int
	Problem       string
	SchemaVersion prompt.SchemaVersion // zero selects the service default
	SessionID     string
}

// Outcome is a successful diagnosis.
type Outcome struct {
	Result        *models.DiagnosisResult
	Provider      string
	Model         string
	SchemaVersion prompt.SchemaVersion
	Duration      time.Duration
}

// Options tunes a DiagnosisService. Zero values select defaults.
type Options struct {
	Timeout       time.Duration
	SchemaVersion prompt.SchemaVersion
	Temperature   float32 // zero uses prompt.Defaults for the schema version
	MaxTokens     int     // zero uses prompt.Defaults for the schema version
	Currency      string
	Limiter       *rate.Limiter
	Recorder      SubmissionRecorder
}

// DiagnosisService validates a request, builds the prompt, issues exactly one
// completion call and parses the reply.
type DiagnosisService struct {
	catalog  *catalog.Catalog
	provider models.AIProvider
	builder  prompt.Builder
	limiter  *rate.Limiter
	recorder SubmissionRecorder
	opts     Options
}

// NewDiagnosisService creates a new DiagnosisService.
func NewDiagnosisService(cat *catalog.Catalog, provider models.AIProvider, opts Options) *DiagnosisService {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if !opts.SchemaVersion.Valid() {
		opts.SchemaVersion = prompt.SchemaFull
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &DiagnosisService{
		catalog:  cat,
		provider: provider,
		builder:  prompt.Builder{Currency: opts.Currency},
		limiter:  limiter,
		recorder: opts.Recorder,
		opts:     opts,
	}
}

// Provider returns the name of the configured provider.
func (s *DiagnosisService) Provider() string { return s.provider.Name() }

// Currency returns the currency named in prompts.
func (s *DiagnosisService) Currency() string {
	if s.opts.Currency == "" {
		return prompt.DefaultCurrency
	}
	return s.opts.Currency
}

// Diagnose runs one diagnosis. Errors match one of the package sentinels.
// A *ValidationError is returned before any outbound call is made.
func (s *DiagnosisService) Diagnose(ctx context.Context, req DiagnoseRequest) (*Outcome, error) {
	req, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	version := req.SchemaVersion
	if version == 0 {
		version = s.opts.SchemaVersion
	}
	if !version.Valid() {
		return nil, &ValidationError{Fields: []string{"schema_version"}}
	}

	sampling := prompt.Defaults(version)
	if s.opts.Temperature > 0 {
		sampling.Temperature = s.opts.Temperature
	}
	if s.opts.MaxTokens > 0 {
		sampling.MaxTokens = s.opts.MaxTokens
	}

	text := s.builder.Build(prompt.Vehicle{Brand: req.Brand, Model: req.Model, Year: req.Year}, req.Problem, version)

	start := time.Now()
	result, err := s.complete(ctx, text, sampling)
	elapsed := time.Since(start)

	s.record(ctx, req, version, result, err, elapsed)

	if err != nil {
		return nil, err
	}
	return &Outcome{
		Result:        result,
		Provider:      s.provider.Name(),
		Model:         s.provider.Model(),
		SchemaVersion: version,
		Duration:      elapsed,
	}, nil
}

func (s *DiagnosisService) complete(ctx context.Context, text string, sampling prompt.Sampling) (*models.DiagnosisResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if err := s.limiter.Wait(callCtx); err != nil {
		if ctx.Err() != nil {
			return nil, ClassifyTransport(ctx.Err())
		}
		// The limiter refuses up front when the wait would outlast the deadline.
		return nil, fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	content, err := s.provider.Complete(callCtx, models.CompletionRequest{
		Prompt:      text,
		Temperature: sampling.Temperature,
		MaxTokens:   sampling.MaxTokens,
	})
	if err != nil {
		return nil, normalizeProviderError(err)
	}

	result, err := ParseResult(content)
	if err != nil {
		slog.Warn("malformed ai response",
			"provider", s.provider.Name(),
			"error", err,
			"raw_content", truncateString(content, maxLoggedRaw),
		)
		return nil, err
	}
	return result, nil
}

// normalizeProviderError makes sure every provider failure carries one of the
// package sentinels, whatever the adapter returned.
func normalizeProviderError(err error) error {
	for _, known := range []error{
		ErrProviderStatus, ErrProviderUnavailable, ErrInvalidResponse, ErrInferenceTimeout, ErrCanceled,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return ClassifyTransport(err)
}

// validate checks req against the catalog and returns it with canonical
// brand and model names.
func (s *DiagnosisService) validate(req DiagnoseRequest) (DiagnoseRequest, error) {
	var fields []string

	brandName := strings.TrimSpace(req.Brand)
	modelName := strings.TrimSpace(req.Model)

	brand, brandOK := s.catalog.FindBrand(brandName)
	if !brandOK {
		fields = append(fields, "brand")
	}

	var model catalog.Model
	modelOK := false
	if brandOK {
		model, modelOK = s.catalog.FindModel(brand, modelName)
	}
	if !modelOK {
		fields = append(fields, "model")
	}

	if !modelOK || !model.HasYear(req.Year) {
		fields = append(fields, "year")
	}

	if strings.TrimSpace(req.Problem) == "" {
		fields = append(fields, "problem")
	}

	if len(fields) > 0 {
		return req, &ValidationError{Fields: fields}
	}
	req.Brand = brand.Name
	req.Model = model.Name
	return req, nil
}

func (s *DiagnosisService) record(ctx context.Context, req DiagnoseRequest, version prompt.SchemaVersion, result *models.DiagnosisResult, err error, elapsed time.Duration) {
	sub := &models.Submission{
		ID:            uuid.New(),
		Brand:         req.Brand,
		Model:         req.Model,
		Year:          req.Year,
		SchemaVersion: int(version),
		Provider:      s.provider.Name(),
		ModelName:     s.provider.Model(),
		Status:        models.SubmissionStatusSuccess,
		DurationMS:    elapsed.Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}
	if req.SessionID != "" {
		sid := req.SessionID
		sub.SessionID = &sid
	}
	if err != nil {
		kind := Kind(err)
		sub.Status = models.SubmissionStatusFailed
		sub.ErrorKind = &kind
		slog.Error("diagnosis failed",
			"submission_id", sub.ID,
			"provider", sub.Provider,
			"model", sub.ModelName,
			"duration_ms", sub.DurationMS,
			"error_kind", kind,
			"error", err,
		)
	} else {
		sub.PartsCount = len(result.Parts)
		slog.Info("diagnosis completed",
			"submission_id", sub.ID,
			"provider", sub.Provider,
			"model", sub.ModelName,
			"duration_ms", sub.DurationMS,
			"parts", sub.PartsCount,
		)
	}

	if s.recorder == nil {
		return
	}
	// The audit row must outlive a canceled request.
	if recErr := s.recorder.CreateSubmission(context.WithoutCancel(ctx), sub); recErr != nil {
		slog.Warn("recording submission failed", "submission_id", sub.ID, "error", recErr)
	}
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
