package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yp-ac/album-maker/internal/album"
	"github.com/yp-ac/album-maker/internal/config"
)

// PipelineRequest carries the photos to process plus optional threshold
// overrides. A named preset is resolved first, explicit thresholds win over
// both the preset and the configured defaults.
type PipelineRequest struct {
	Photos     []album.Photo       `json:"photos"`
	Preset     string              `json:"preset,omitempty"`
	Thresholds *ThresholdOverrides `json:"thresholds,omitempty"`
}

// ThresholdOverrides are per-request tunables; nil fields keep the resolved
// defaults.
type ThresholdOverrides struct {
	DistanceKm     *float64 `json:"distance_km,omitempty"`
	TimeHours      *float64 `json:"time_hours,omitempty"`
	SimilarityBits *int     `json:"similarity_bits,omitempty"`
}

// PipelineHandler executes the pipeline without persisting the result.
type PipelineHandler struct {
	config *config.Config
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(cfg *config.Config) *PipelineHandler {
	return &PipelineHandler{config: cfg}
}

// resolveThresholds merges the configured defaults, an optional preset, and
// per-request overrides.
func resolveThresholds(cfg *config.Config, req *PipelineRequest) (album.Thresholds, error) {
	t := cfg.Thresholds
	if req.Preset != "" {
		preset, err := cfg.PresetThresholds(req.Preset)
		if err != nil {
			return album.Thresholds{}, err
		}
		t = preset
	}
	if o := req.Thresholds; o != nil {
		if o.DistanceKm != nil {
			t.DistanceKm = *o.DistanceKm
		}
		if o.TimeHours != nil {
			t.TimeHours = *o.TimeHours
		}
		if o.SimilarityBits != nil {
			t.SimilarityBits = *o.SimilarityBits
		}
	}
	if t.DistanceKm < 0 || t.TimeHours < 0 || t.SimilarityBits < 0 {
		return album.Thresholds{}, fmt.Errorf("thresholds must be non-negative")
	}
	return t, nil
}

// executePipeline decodes the shared request shape and runs the pipeline.
// Input problems map to 400, anything else to 500.
func executePipeline(w http.ResponseWriter, r *http.Request, cfg *config.Config) *album.Result {
	var req PipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return nil
	}

	thresholds, err := resolveThresholds(cfg, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil
	}

	res, err := album.Run(req.Photos, thresholds)
	if err != nil {
		if isInputError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return nil
	}
	return res
}

// isInputError reports whether the pipeline rejected the caller's photos.
func isInputError(err error) bool {
	return errors.Is(err, album.ErrEmptyID) ||
		errors.Is(err, album.ErrDuplicateID) ||
		errors.Is(err, album.ErrMissingSharpness) ||
		errors.Is(err, album.ErrMissingFingerprint) ||
		errors.Is(err, album.ErrInvalidFingerprint)
}

// Run handles POST /api/v1/pipeline.
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	res := executePipeline(w, r, h.config)
	if res == nil {
		return
	}
	respondJSON(w, http.StatusOK, res)
}
