package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yp-ac/album-maker/internal/config"
	"github.com/yp-ac/album-maker/internal/storage"
)

// RunsHandler manages persisted pipeline runs.
type RunsHandler struct {
	config *config.Config
	store  storage.RunStore
}

// NewRunsHandler creates a new runs handler. The store may be nil when no
// database is configured.
func NewRunsHandler(cfg *config.Config, store storage.RunStore) *RunsHandler {
	return &RunsHandler{config: cfg, store: store}
}

// requireStore rejects the request when run persistence is not configured.
func (h *RunsHandler) requireStore(w http.ResponseWriter) bool {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "run storage is not configured")
		return false
	}
	return true
}

// Create handles POST /api/v1/runs: execute the pipeline and persist the
// result.
func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	res := executePipeline(w, r, h.config)
	if res == nil {
		return
	}

	if err := h.store.SaveRun(r.Context(), res); err != nil {
		slog.Error("failed to save run", "run_id", res.RunID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save run")
		return
	}

	respondJSON(w, http.StatusCreated, res)
}

// List handles GET /api/v1/runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	summaries, err := h.store.ListRuns(r.Context())
	if err != nil {
		slog.Error("failed to list runs", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"runs": summaries})
}

// Get handles GET /api/v1/runs/{id}.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	runID := chi.URLParam(r, "id")
	run, err := h.store.GetRun(r.Context(), runID)
	if errors.Is(err, storage.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		slog.Error("failed to get run", "run_id", runID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// Delete handles DELETE /api/v1/runs/{id}.
func (h *RunsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	runID := chi.URLParam(r, "id")
	err := h.store.DeleteRun(r.Context(), runID)
	if errors.Is(err, storage.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete run", "run_id", runID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete run")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
