package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yp-ac/album-maker/internal/album"
)

func TestPipelineHandler_Run_Success(t *testing.T) {
	handler := NewPipelineHandler(testConfig())

	body := encodeBody(t, PipelineRequest{Photos: samplePhotos()})
	req := httptest.NewRequest("POST", "/api/v1/pipeline", body)
	recorder := httptest.NewRecorder()

	handler.Run(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var res album.Result
	parseJSONResponse(t, recorder, &res)

	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if len(res.Photos) != 3 {
		t.Errorf("expected 3 assignments, got %d", len(res.Photos))
	}
	if len(res.Groups) != 2 {
		t.Errorf("expected 2 groups at default threshold, got %d", len(res.Groups))
	}
	if !res.Photos["p2"].Keeper {
		t.Error("p2 should be the keeper of its group")
	}
}

func TestPipelineHandler_Run_InvalidBody(t *testing.T) {
	handler := NewPipelineHandler(testConfig())

	req := httptest.NewRequest("POST", "/api/v1/pipeline", strings.NewReader("{not json"))
	recorder := httptest.NewRecorder()

	handler.Run(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestPipelineHandler_Run_ValidationError(t *testing.T) {
	handler := NewPipelineHandler(testConfig())

	photos := []album.Photo{{ID: "p1", Sharpness: 0.5}} // no fingerprint
	body := encodeBody(t, PipelineRequest{Photos: photos})
	req := httptest.NewRequest("POST", "/api/v1/pipeline", body)
	recorder := httptest.NewRecorder()

	handler.Run(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)

	var resp map[string]string
	parseJSONResponse(t, recorder, &resp)
	if resp["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestPipelineHandler_Run_UnknownPreset(t *testing.T) {
	handler := NewPipelineHandler(testConfig())

	body := encodeBody(t, PipelineRequest{Photos: samplePhotos(), Preset: "nope"})
	req := httptest.NewRequest("POST", "/api/v1/pipeline", body)
	recorder := httptest.NewRecorder()

	handler.Run(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestPipelineHandler_Run_ThresholdOverrides(t *testing.T) {
	handler := NewPipelineHandler(testConfig())

	// At 0 bits only identical fingerprints group, so all three photos
	// become their own group.
	zero := 0
	body := encodeBody(t, PipelineRequest{
		Photos:     samplePhotos(),
		Thresholds: &ThresholdOverrides{SimilarityBits: &zero},
	})
	req := httptest.NewRequest("POST", "/api/v1/pipeline", body)
	recorder := httptest.NewRecorder()

	handler.Run(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var res album.Result
	parseJSONResponse(t, recorder, &res)
	if len(res.Groups) != 3 {
		t.Errorf("expected 3 groups at zero threshold, got %d", len(res.Groups))
	}
	if res.Thresholds.SimilarityBits != 0 {
		t.Errorf("result should echo the override, got %d", res.Thresholds.SimilarityBits)
	}
}

func TestPipelineHandler_Run_NegativeThreshold(t *testing.T) {
	handler := NewPipelineHandler(testConfig())

	neg := -1.0
	body := encodeBody(t, PipelineRequest{
		Photos:     samplePhotos(),
		Thresholds: &ThresholdOverrides{DistanceKm: &neg},
	})
	req := httptest.NewRequest("POST", "/api/v1/pipeline", body)
	recorder := httptest.NewRecorder()

	handler.Run(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestResolveThresholds_PresetThenOverride(t *testing.T) {
	cfg := testConfig()
	distance := 3.0
	req := &PipelineRequest{
		Preset:     "road-trip",
		Thresholds: &ThresholdOverrides{DistanceKm: &distance},
	}

	th, err := resolveThresholds(cfg, req)
	if err != nil {
		t.Fatal(err)
	}
	if th.DistanceKm != 3.0 {
		t.Errorf("override should win over preset, got %f", th.DistanceKm)
	}
	if th.TimeHours != 12.0 {
		t.Errorf("unoverridden fields should come from the preset, got %f", th.TimeHours)
	}
}
