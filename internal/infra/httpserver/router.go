package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/shopdraw/drawcheck/internal/application/analysis"
	"github.com/shopdraw/drawcheck/internal/config"
	"github.com/shopdraw/drawcheck/internal/domain/analysis"
	"github.com/shopdraw/drawcheck/internal/domain/document"
	"github.com/shopdraw/drawcheck/internal/middleware"
)

type Router struct {
	svc           *appanalysis.Service
	store         document.BlobStore
	limits        config.Limits
	inlineTimeout time.Duration
	blobTimeout   time.Duration
}

func NewRouter(svc *appanalysis.Service, store document.BlobStore, checkers map[string]middleware.HealthChecker, limits config.Limits, inlineTimeout, blobTimeout time.Duration) http.Handler {
	r := &Router{
		svc:           svc,
		store:         store,
		limits:        limits,
		inlineTimeout: inlineTimeout,
		blobTimeout:   blobTimeout,
	}
	mux := chi.NewRouter()

	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/upload", r.wrap(r.handleUpload))
	mux.Post("/upload-token", r.wrap(r.handleUploadToken))

	// model calls are the expensive path, keep them behind the limiter
	limiter := middleware.NewRateLimiter(5, 1)
	mux.Group(func(rt chi.Router) {
		rt.Use(limiter.Middleware)
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap converts taxonomy errors to status codes at the boundary. Only the
// error message crosses, never internals.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			writeError(w, statusFor(err), err)
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrValidation), errors.Is(err, analysis.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrUpstreamBilling):
		return http.StatusPaymentRequired
	case errors.Is(err, analysis.ErrSizeLimit):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, analysis.ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

type analyzeResponse struct {
	Success    bool             `json:"success"`
	Filename   string           `json:"filename"`
	DurationMS int64            `json:"durationMs"`
	Results    *analysis.Result `json:"results"`
}

// POST /analyze
// multipart: fields pdf + projectType; JSON: {blobUrl, filename, projectType}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		return r.analyzeInline(w, req)
	}
	return r.analyzeByURL(w, req)
}

func (r *Router) analyzeInline(w http.ResponseWriter, req *http.Request) error {
	// slack for multipart framing on top of the document ceiling
	req.Body = http.MaxBytesReader(w, req.Body, r.limits.HardMax+(1<<20))

	data, filename, err := r.readPDFField(req)
	if err != nil {
		return err
	}
	pctx, err := analysis.ParseProjectContext(req.FormValue("projectType"))
	if err != nil {
		return err
	}

	ctx, cancel := contextWithBudget(req, r.inlineTimeout)
	defer cancel()

	middleware.IncrementAnalyses()
	report, err := r.svc.Run(ctx, document.NewUploaded(data, filename), pctx)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSON(w, analyzeResponse{
		Success:    true,
		Filename:   report.Filename,
		DurationMS: report.DurationMS,
		Results:    report.Result,
	})
}

func (r *Router) analyzeByURL(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		BlobURL     string          `json:"blobUrl"`
		Filename    string          `json:"filename"`
		ProjectType json.RawMessage `json:"projectType"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", analysis.ErrValidation, err)
	}
	if err := middleware.ValidateBlobURL(body.BlobURL); err != nil {
		return err
	}
	pctx, err := parseProjectType(body.ProjectType)
	if err != nil {
		return err
	}

	// staged documents get the longer execution budget
	ctx, cancel := contextWithBudget(req, r.blobTimeout)
	defer cancel()

	middleware.IncrementAnalyses()
	report, err := r.svc.RunFromURL(ctx, body.BlobURL, middleware.SanitizeFilename(body.Filename), pctx)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSON(w, analyzeResponse{
		Success:    true,
		Filename:   report.Filename,
		DurationMS: report.DurationMS,
		Results:    report.Result,
	})
}

// POST /upload — multipart field pdf, server-mediated staging
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.limits.HardMax+(1<<20))

	data, filename, err := r.readPDFField(req)
	if err != nil {
		return err
	}

	obj, err := r.store.Upload(req.Context(), data, filename)
	if err != nil {
		return err
	}
	middleware.IncrementUploads()
	return writeJSON(w, obj)
}

// POST /upload-token — issue a direct client-to-store grant
func (r *Router) handleUploadToken(w http.ResponseWriter, req *http.Request) error {
	var intent document.UploadIntent
	if err := json.NewDecoder(req.Body).Decode(&intent); err != nil {
		return fmt.Errorf("%w: %v", analysis.ErrValidation, err)
	}
	intent.Filename = middleware.SanitizeFilename(intent.Filename)

	grant, err := r.store.PresignUpload(req.Context(), intent)
	if err != nil {
		return err
	}
	middleware.IncrementTokensIssued()
	return writeJSON(w, grant)
}

// readPDFField pulls the pdf multipart field, sniffing the header and
// translating body-too-large into the size-limit taxonomy member.
func (r *Router) readPDFField(req *http.Request) ([]byte, string, error) {
	file, header, err := req.FormFile("pdf")
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, "", sizeLimitError(r.limits.HardMax)
		}
		return nil, "", fmt.Errorf("%w: multipart field %q is required", analysis.ErrValidation, "pdf")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, "", sizeLimitError(r.limits.HardMax)
		}
		return nil, "", fmt.Errorf("%w: reading upload: %v", analysis.ErrValidation, err)
	}
	if err := middleware.ValidatePDFBytes(data); err != nil {
		return nil, "", err
	}
	return data, middleware.SanitizeFilename(header.Filename), nil
}

// isBodyTooLarge matches the MaxBytesReader trip both as a typed error and
// by message, since multipart parsing does not always wrap it.
func isBodyTooLarge(err error) bool {
	if maxed := new(http.MaxBytesError); errors.As(err, &maxed) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

func sizeLimitError(limit int64) error {
	return fmt.Errorf("%w (limit %s); compress the file externally and resubmit",
		analysis.ErrSizeLimit, document.FormatMB(limit))
}

// parseProjectType accepts either a JSON object or the stringified object
// the form variant uses.
func parseProjectType(raw json.RawMessage) (analysis.ProjectContext, error) {
	if len(raw) == 0 {
		return analysis.ProjectContext{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return analysis.ParseProjectContext(s)
	}
	return analysis.ParseProjectContext(string(raw))
}

func contextWithBudget(req *http.Request, budget time.Duration) (context.Context, context.CancelFunc) {
	if budget <= 0 {
		return context.WithCancel(req.Context())
	}
	return context.WithTimeout(req.Context(), budget)
}
