package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yp-ac/album-maker/internal/album"
	"github.com/yp-ac/album-maker/internal/config"
	"github.com/yp-ac/album-maker/internal/storage"
)

// testConfig returns a config with known defaults, independent of the
// environment.
func testConfig() *config.Config {
	return &config.Config{
		Thresholds: album.Thresholds{DistanceKm: 1.0, TimeHours: 6.0, SimilarityBits: 10},
		Presets: config.PresetsConfig{
			Presets: map[string]config.Preset{
				"road-trip": {DistanceKm: 25.0, TimeHours: 12.0, SimilarityBits: 10},
			},
		},
	}
}

// fakeStore is an in-memory RunStore for handler tests.
type fakeStore struct {
	runs    map[string]*storage.StoredRun
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: make(map[string]*storage.StoredRun)}
}

func (f *fakeStore) SaveRun(ctx context.Context, res *album.Result) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.runs[res.RunID] = &storage.StoredRun{Result: *res}
	return nil
}

func (f *fakeStore) GetRun(ctx context.Context, runID string) (*storage.StoredRun, error) {
	run, ok := f.runs[runID]
	if !ok {
		return nil, storage.ErrRunNotFound
	}
	return run, nil
}

func (f *fakeStore) ListRuns(ctx context.Context) ([]storage.RunSummary, error) {
	summaries := []storage.RunSummary{}
	for id, run := range f.runs {
		summaries = append(summaries, storage.RunSummary{
			RunID:      id,
			Thresholds: run.Result.Thresholds,
			PhotoCount: len(run.Result.Photos),
			Clusters:   len(run.Result.Clusters),
			Groups:     len(run.Result.Groups),
		})
	}
	return summaries, nil
}

func (f *fakeStore) DeleteRun(ctx context.Context, runID string) error {
	if _, ok := f.runs[runID]; !ok {
		return storage.ErrRunNotFound
	}
	delete(f.runs, runID)
	return nil
}

// encodeBody marshals a request payload for httptest.NewRequest.
func encodeBody(t *testing.T, body any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request body: %v", err)
	}
	return bytes.NewReader(data)
}

// chiContext builds a request context carrying a chi route parameter.
func chiContext(key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(context.Background(), chi.RouteCtxKey, rctx)
}

func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d (body: %s)", expected, recorder.Code, recorder.Body.String())
	}
}

func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	if got := recorder.Header().Get("Content-Type"); got != expected {
		t.Errorf("expected content type %q, got %q", expected, got)
	}
}

func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), v); err != nil {
		t.Fatalf("parsing response body: %v (body: %s)", err, recorder.Body.String())
	}
}

// samplePhotos is a minimal valid payload: two near-duplicates and one
// distinct photo.
func samplePhotos() []album.Photo {
	return []album.Photo{
		{ID: "p1", Sharpness: 0.8, Fingerprint: "0000000000000000"},
		{ID: "p2", Sharpness: 0.95, Fingerprint: "0000000000000001"},
		{ID: "p3", Sharpness: 0.4, Fingerprint: "000000000000ffff"},
	}
}
