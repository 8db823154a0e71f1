package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"portfolio-analyst/config"
	"portfolio-analyst/ingest"
	"portfolio-analyst/internal/app"
	"portfolio-analyst/services"
)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"features": map[string]bool{
			"analysis": h.app.AnalysisReady(),
			"screener": h.app.ScreenerReady(),
		},
	}

	if !h.app.AnalysisReady() {
		status["status"] = "degraded"
	}

	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// HandleAnalyzePortfolio accepts a portfolio CSV upload and returns the
// full analysis report. The file is expected as multipart form field
// "file"; a raw CSV body is accepted as a fallback.
func (h *Handler) HandleAnalyzePortfolio(w http.ResponseWriter, r *http.Request) {
	upload, err := h.uploadBody(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.app.AnalyzePortfolio(r.Context(), upload)
	if err != nil {
		switch {
		case ingest.IsParseError(err), ingest.IsValidationError(err):
			h.jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, app.ErrBusy):
			h.jsonError(w, err.Error(), http.StatusTooManyRequests)
		case errors.Is(err, app.ErrNotConfigured):
			h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
		default:
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	h.jsonResponse(w, report)
}

// uploadBody extracts the CSV payload from the request
func (h *Handler) uploadBody(r *http.Request) (io.Reader, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.cfg.HTTP.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.cfg.HTTP.MaxUploadBytes); err == nil {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("multipart upload is missing the 'file' field")
		}
		return file, nil
	}

	// Not multipart: treat the body as the CSV itself
	return r.Body, nil
}

// HandleRunScreener executes a value screener run
func (h *Handler) HandleRunScreener(w http.ResponseWriter, r *http.Request) {
	run, err := h.app.RunScreener(r.Context())
	if err != nil {
		if errors.Is(err, app.ErrNotConfigured) {
			h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		// The failed run still carries diagnostics worth returning
		if run != nil {
			h.jsonResponse(w, run)
			return
		}
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, run)
}

// HandleGetLatestScreenerRun returns the most recent screener run
func (h *Handler) HandleGetLatestScreenerRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.app.LatestScreenerRun()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if run == nil {
		h.jsonError(w, "no screener run this session", http.StatusNotFound)
		return
	}
	h.jsonResponse(w, run)
}

// HandleGetTopPicks returns the top picks from the latest completed run
func (h *Handler) HandleGetTopPicks(w http.ResponseWriter, r *http.Request) {
	picks, err := h.app.LatestScreenerPicks()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if picks == nil {
		h.jsonError(w, "no completed screener run this session", http.StatusNotFound)
		return
	}
	h.jsonResponse(w, picks)
}

// jsonResponse writes a JSON response
func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// jsonError writes a JSON error response
func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
