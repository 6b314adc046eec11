package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/yp-ac/album-maker/internal/album"
	"github.com/yp-ac/album-maker/internal/storage"
)

// RunRepository provides PostgreSQL-backed run storage.
type RunRepository struct {
	pool *Pool
}

var _ storage.RunStore = (*RunRepository)(nil)

// NewRunRepository creates a new PostgreSQL run repository.
func NewRunRepository(pool *Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// SaveRun persists the complete result in a single transaction.
func (r *RunRepository) SaveRun(ctx context.Context, res *album.Result) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, distance_km, time_hours, similarity_bits)
		VALUES ($1, $2, $3, $4)
	`, res.RunID, res.Thresholds.DistanceKm, res.Thresholds.TimeHours, res.Thresholds.SimilarityBits)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, c := range res.Clusters {
		var lat, lon any
		if c.Centroid != nil {
			lat, lon = c.Centroid.Lat, c.Centroid.Lon
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_clusters (run_id, cluster_id, photo_ids, centroid_lat, centroid_lon, start_at, end_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, res.RunID, c.ID, pq.Array(c.PhotoIDs), lat, lon, c.Start, c.End)
		if err != nil {
			return fmt.Errorf("insert cluster %d: %w", c.ID, err)
		}
	}

	for _, g := range res.Groups {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_groups (run_id, group_id, photo_ids, keeper_id)
			VALUES ($1, $2, $3, $4)
		`, res.RunID, g.ID, pq.Array(g.PhotoIDs), g.KeeperID)
		if err != nil {
			return fmt.Errorf("insert group %d: %w", g.ID, err)
		}
	}

	for id, a := range res.Photos {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_photos (run_id, photo_id, cluster_id, group_id, keeper)
			VALUES ($1, $2, $3, $4, $5)
		`, res.RunID, id, a.ClusterID, a.GroupID, a.Keeper)
		if err != nil {
			return fmt.Errorf("insert photo %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", res.RunID, err)
	}
	return nil
}

// GetRun loads a stored run by id.
func (r *RunRepository) GetRun(ctx context.Context, runID string) (*storage.StoredRun, error) {
	var run storage.StoredRun
	run.Result.RunID = runID

	err := r.pool.QueryRow(ctx, `
		SELECT created_at, distance_km, time_hours, similarity_bits
		FROM runs WHERE id = $1
	`, runID).Scan(
		&run.CreatedAt,
		&run.Result.Thresholds.DistanceKm,
		&run.Result.Thresholds.TimeHours,
		&run.Result.Thresholds.SimilarityBits,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	if run.Result.Clusters, err = r.runClusters(ctx, runID); err != nil {
		return nil, err
	}
	if run.Result.Groups, err = r.runGroups(ctx, runID); err != nil {
		return nil, err
	}
	if run.Result.Photos, err = r.runPhotos(ctx, runID); err != nil {
		return nil, err
	}

	return &run, nil
}

func (r *RunRepository) runClusters(ctx context.Context, runID string) ([]album.Cluster, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cluster_id, photo_ids, centroid_lat, centroid_lon, start_at, end_at
		FROM run_clusters WHERE run_id = $1 ORDER BY cluster_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query clusters: %w", err)
	}
	defer rows.Close()

	clusters := []album.Cluster{}
	for rows.Next() {
		var c album.Cluster
		var lat, lon sql.NullFloat64
		var start, end sql.NullTime
		if err := rows.Scan(&c.ID, pq.Array(&c.PhotoIDs), &lat, &lon, &start, &end); err != nil {
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		if lat.Valid && lon.Valid {
			c.Centroid = &album.Position{Lat: lat.Float64, Lon: lon.Float64}
		}
		if start.Valid {
			t := start.Time.UTC()
			c.Start = &t
		}
		if end.Valid {
			t := end.Time.UTC()
			c.End = &t
		}
		clusters = append(clusters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clusters: %w", err)
	}
	return clusters, nil
}

func (r *RunRepository) runGroups(ctx context.Context, runID string) ([]album.DuplicateGroup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT group_id, photo_ids, keeper_id
		FROM run_groups WHERE run_id = $1 ORDER BY group_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := []album.DuplicateGroup{}
	for rows.Next() {
		var g album.DuplicateGroup
		if err := rows.Scan(&g.ID, pq.Array(&g.PhotoIDs), &g.KeeperID); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

func (r *RunRepository) runPhotos(ctx context.Context, runID string) (map[string]album.Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT photo_id, cluster_id, group_id, keeper
		FROM run_photos WHERE run_id = $1
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	photos := make(map[string]album.Assignment)
	for rows.Next() {
		var id string
		var a album.Assignment
		if err := rows.Scan(&id, &a.ClusterID, &a.GroupID, &a.Keeper); err != nil {
			return nil, fmt.Errorf("scan photo assignment: %w", err)
		}
		photos[id] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photo assignments: %w", err)
	}
	return photos, nil
}

// ListRuns returns summaries of all runs, newest first.
func (r *RunRepository) ListRuns(ctx context.Context) ([]storage.RunSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.created_at, r.distance_km, r.time_hours, r.similarity_bits,
		       (SELECT COUNT(*) FROM run_photos p WHERE p.run_id = r.id),
		       (SELECT COUNT(*) FROM run_clusters c WHERE c.run_id = r.id),
		       (SELECT COUNT(*) FROM run_groups g WHERE g.run_id = r.id)
		FROM runs r
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	summaries := []storage.RunSummary{}
	for rows.Next() {
		var s storage.RunSummary
		var created time.Time
		if err := rows.Scan(
			&s.RunID,
			&created,
			&s.Thresholds.DistanceKm,
			&s.Thresholds.TimeHours,
			&s.Thresholds.SimilarityBits,
			&s.PhotoCount,
			&s.Clusters,
			&s.Groups,
		); err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		s.CreatedAt = created.UTC()
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run summaries: %w", err)
	}
	return summaries, nil
}

// DeleteRun removes a run; child rows cascade.
func (r *RunRepository) DeleteRun(ctx context.Context, runID string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM runs WHERE id = $1", runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrRunNotFound
	}
	return nil
}
