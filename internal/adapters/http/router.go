package httpadapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirillkom/food-inspections/internal/config"
	"github.com/kirillkom/food-inspections/internal/core/domain"
	"github.com/kirillkom/food-inspections/internal/core/ports"
	"github.com/kirillkom/food-inspections/internal/observability/metrics"
)

const (
	serviceName      = "inspections-api"
	maxWebhookBody   = 1 << 20
	processingStatus = "Processing started"
)

type Router struct {
	cfg            config.Config
	trigger        ports.RefreshTrigger
	manifest       ports.ManifestReader
	establishments ports.EstablishmentReader
	runs           ports.RunReader
	metrics        *metrics.HTTPServerMetrics
	logger         *slog.Logger
}

// NewRouter builds the API. establishments and runs may be nil when
// persistence is disabled; their endpoints then answer 503.
func NewRouter(
	cfg config.Config,
	trigger ports.RefreshTrigger,
	manifest ports.ManifestReader,
	establishments ports.EstablishmentReader,
	runs ports.RunReader,
) *Router {
	return &Router{
		cfg:            cfg,
		trigger:        trigger,
		manifest:       manifest,
		establishments: establishments,
		runs:           runs,
		logger:         slog.Default(),
	}
}

func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) WithLogger(logger *slog.Logger) *Router {
	if logger != nil {
		rt.logger = logger
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	refresh := rateLimitMiddleware(http.HandlerFunc(rt.refresh), rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.recordRateLimited)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/v1/refresh", refresh)
	mux.Handle("/push", refresh)
	mux.HandleFunc("/v1/manifest", rt.getManifest)
	mux.HandleFunc("/v1/establishments/", rt.getEstablishment)
	mux.HandleFunc("/v1/runs/", rt.getRun)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIBackpressureMaxInFlight, rt.cfg.APIBackpressureWait)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(rt.logger, handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	// The webhook payload is not interpreted, but a non-empty body must be JSON.
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body"})
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 && !json.Valid(body) {
		rt.recordTrigger("invalid")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	source := "api"
	if r.URL.Path == "/push" {
		source = "webhook"
	}
	run, err := rt.trigger.Trigger(r.Context(), source)
	if err != nil {
		rt.recordTrigger("error")
		writeError(w, r, err)
		return
	}

	rt.recordTrigger("accepted")
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": processingStatus,
		"run_id": run.ID,
	})
}

func (rt *Router) getManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	entries, err := rt.manifest.Build(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.ManifestEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (rt *Router) getEstablishment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.establishments == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "persistence is disabled"})
		return
	}

	permit := strings.TrimPrefix(r.URL.Path, "/v1/establishments/")
	if permit == "" || strings.Contains(permit, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "permit is required"})
		return
	}

	est, err := rt.establishments.GetByPermit(r.Context(), permit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (rt *Router) getRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.runs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "persistence is disabled"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "run id is required"})
		return
	}

	run, err := rt.runs.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (rt *Router) recordTrigger(status string) {
	if rt.metrics != nil {
		rt.metrics.RecordRefreshTrigger(serviceName, status)
	}
}

func (rt *Router) recordRateLimited(path string) {
	if rt.metrics != nil {
		rt.metrics.RecordRateLimited(serviceName, path)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("http_handler_failed", "request_id", requestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
		message = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}
