package album

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/yp-ac/album-maker/internal/fingerprint"
)

// Run executes the full pipeline: validate, cluster, detect duplicate
// groups over the whole input, select keepers, and join everything into a
// Result keyed by photo id.
func Run(photos []Photo, t Thresholds) (*Result, error) {
	if err := validate(photos); err != nil {
		return nil, err
	}

	clusters := ClusterPhotos(photos, t.DistanceKm, t.TimeHours)

	groups, err := FindDuplicateGroups(photos, t.SimilarityBits)
	if err != nil {
		return nil, err
	}
	groups, err = SelectKeepers(groups, photos)
	if err != nil {
		return nil, err
	}

	assignments := make(map[string]Assignment, len(photos))
	for _, c := range clusters {
		for _, id := range c.PhotoIDs {
			assignments[id] = Assignment{ClusterID: c.ID}
		}
	}
	for _, g := range groups {
		for _, id := range g.PhotoIDs {
			a := assignments[id]
			a.GroupID = g.ID
			a.Keeper = id == g.KeeperID
			assignments[id] = a
		}
	}

	return &Result{
		RunID:      uuid.NewString(),
		Thresholds: t,
		Clusters:   clusters,
		Groups:     groups,
		Photos:     assignments,
	}, nil
}

// validate rejects the run when any photo lacks the precomputed fields that
// duplicate detection and keeper selection depend on.
func validate(photos []Photo) error {
	seen := make(map[string]struct{}, len(photos))
	for _, p := range photos {
		if p.ID == "" {
			return ErrEmptyID
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("photo %q: %w", p.ID, ErrDuplicateID)
		}
		seen[p.ID] = struct{}{}

		if math.IsNaN(p.Sharpness) || p.Sharpness < 0 {
			return fmt.Errorf("photo %q: %w", p.ID, ErrMissingSharpness)
		}
		if p.Fingerprint == "" {
			return fmt.Errorf("photo %q: %w", p.ID, ErrMissingFingerprint)
		}
		if _, err := fingerprint.Parse(p.Fingerprint); err != nil {
			return fmt.Errorf("photo %q: %w", p.ID, ErrInvalidFingerprint)
		}
	}
	return nil
}
