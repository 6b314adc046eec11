// Package storage defines the persistence contract for pipeline runs. The
// web server and CLI depend on the RunStore interface; the postgres
// subpackage provides the real implementation.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/yp-ac/album-maker/internal/album"
)

// ErrRunNotFound is returned when a run id does not exist in the store.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	RunID      string           `json:"run_id"`
	CreatedAt  time.Time        `json:"created_at"`
	Thresholds album.Thresholds `json:"thresholds"`
	PhotoCount int              `json:"photo_count"`
	Clusters   int              `json:"clusters"`
	Groups     int              `json:"groups"`
}

// StoredRun is a persisted pipeline result with its creation time.
type StoredRun struct {
	CreatedAt time.Time    `json:"created_at"`
	Result    album.Result `json:"result"`
}

// RunStore persists and retrieves pipeline runs.
type RunStore interface {
	// SaveRun persists a complete result atomically.
	SaveRun(ctx context.Context, res *album.Result) error
	// GetRun loads a run by id. Returns ErrRunNotFound for unknown ids.
	GetRun(ctx context.Context, runID string) (*StoredRun, error)
	// ListRuns returns summaries of all runs, newest first.
	ListRuns(ctx context.Context) ([]RunSummary, error)
	// DeleteRun removes a run and its rows. Returns ErrRunNotFound for
	// unknown ids.
	DeleteRun(ctx context.Context, runID string) error
}
