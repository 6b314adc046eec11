// Package album turns a flat photo collection into location/time clusters
// and near-duplicate groups with one keeper per group. The whole pipeline is
// a pure function over in-memory values: it reads no files, opens no
// connections, and produces a fresh Result the caller owns.
package album

import "time"

// Position is a GPS coordinate in floating-point degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Photo is one input record. Position and TakenAt are independently
// optional; Sharpness and Fingerprint are precomputed by the image analysis
// layer and required before duplicate detection runs.
type Photo struct {
	// ID must be unique within one pipeline run (file path or content hash).
	ID       string     `json:"id"`
	Position *Position  `json:"position,omitempty"`
	TakenAt  *time.Time `json:"taken_at,omitempty"`
	// Sharpness is non-negative; higher means sharper. Negative or NaN
	// values are rejected as missing.
	Sharpness float64 `json:"sharpness"`
	// Fingerprint is a 64-bit perceptual hash encoded as 16 hex characters.
	// Empty means missing.
	Fingerprint string `json:"fingerprint"`
}

// Thresholds are the pipeline tunables. They are applied literally; range
// validation belongs to the caller.
type Thresholds struct {
	// DistanceKm is the maximum centroid distance for merging two adjacent
	// clusters.
	DistanceKm float64 `json:"distance_km"`
	// TimeHours is the maximum time gap for merging two adjacent clusters.
	TimeHours float64 `json:"time_hours"`
	// SimilarityBits is the maximum fingerprint Hamming distance counted as
	// a duplicate edge.
	SimilarityBits int `json:"similarity_bits"`
}

// Cluster is an ordered grouping of photo ids produced by ClusterPhotos.
// Clusters are immutable once produced; every input photo belongs to exactly
// one cluster.
type Cluster struct {
	ID       int      `json:"id"`
	PhotoIDs []string `json:"photo_ids"`
	// Centroid is the mean position of members that have one, nil if none do.
	Centroid *Position `json:"centroid,omitempty"`
	// Start and End span the timestamps of members that have one.
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// DuplicateGroup is a set of transitively similar photos. Groups are
// disjoint; a photo with no near-duplicate forms a singleton group. KeeperID
// is empty until SelectKeepers runs and is always a member of the group
// afterwards.
type DuplicateGroup struct {
	ID       int      `json:"id"`
	PhotoIDs []string `json:"photo_ids"`
	KeeperID string   `json:"keeper_id,omitempty"`
}

// Assignment locates one photo in the final result.
type Assignment struct {
	ClusterID int  `json:"cluster_id"`
	GroupID   int  `json:"group_id"`
	Keeper    bool `json:"keeper"`
}

// Result is the final pipeline artifact, produced once per Run.
type Result struct {
	RunID      string                `json:"run_id"`
	Thresholds Thresholds            `json:"thresholds"`
	Clusters   []Cluster             `json:"clusters"`
	Groups     []DuplicateGroup      `json:"groups"`
	Photos     map[string]Assignment `json:"photos"`
}
