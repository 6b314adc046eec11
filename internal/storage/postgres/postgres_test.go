//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/yp-ac/album-maker/internal/album"
	"github.com/yp-ac/album-maker/internal/config"
	"github.com/yp-ac/album-maker/internal/storage"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func sampleResult() *album.Result {
	noon := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	later := noon.Add(30 * time.Minute)

	return &album.Result{
		RunID:      uuid.NewString(),
		Thresholds: album.Thresholds{DistanceKm: 1.0, TimeHours: 6.0, SimilarityBits: 10},
		Clusters: []album.Cluster{
			{
				ID:       0,
				PhotoIDs: []string{"a.jpg", "b.jpg"},
				Centroid: &album.Position{Lat: 40.7128, Lon: -74.006},
				Start:    &noon,
				End:      &later,
			},
			{ID: 1, PhotoIDs: []string{"c.jpg"}},
		},
		Groups: []album.DuplicateGroup{
			{ID: 0, PhotoIDs: []string{"a.jpg", "b.jpg"}, KeeperID: "b.jpg"},
			{ID: 1, PhotoIDs: []string{"c.jpg"}, KeeperID: "c.jpg"},
		},
		Photos: map[string]album.Assignment{
			"a.jpg": {ClusterID: 0, GroupID: 0, Keeper: false},
			"b.jpg": {ClusterID: 0, GroupID: 0, Keeper: true},
			"c.jpg": {ClusterID: 1, GroupID: 1, Keeper: true},
		},
	}
}

func TestRunRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewRunRepository(pool)
	res := sampleResult()

	t.Run("SaveAndGet", func(t *testing.T) {
		if err := repo.SaveRun(ctx, res); err != nil {
			t.Fatalf("Failed to save run: %v", err)
		}

		got, err := repo.GetRun(ctx, res.RunID)
		if err != nil {
			t.Fatalf("Failed to get run: %v", err)
		}

		if got.Result.RunID != res.RunID {
			t.Errorf("Expected run id %s, got %s", res.RunID, got.Result.RunID)
		}
		if got.Result.Thresholds != res.Thresholds {
			t.Errorf("Thresholds round-trip mismatch: %+v", got.Result.Thresholds)
		}
		if len(got.Result.Clusters) != 2 {
			t.Fatalf("Expected 2 clusters, got %d", len(got.Result.Clusters))
		}
		if got.Result.Clusters[0].Centroid == nil {
			t.Fatal("Cluster 0 centroid should survive the round trip")
		}
		if got.Result.Clusters[0].Centroid.Lat != 40.7128 {
			t.Errorf("Centroid lat = %f", got.Result.Clusters[0].Centroid.Lat)
		}
		if got.Result.Clusters[1].Centroid != nil || got.Result.Clusters[1].Start != nil {
			t.Error("Cluster 1 should keep nil centroid and span")
		}
		if len(got.Result.Clusters[0].PhotoIDs) != 2 || got.Result.Clusters[0].PhotoIDs[0] != "a.jpg" {
			t.Errorf("Cluster 0 members = %v", got.Result.Clusters[0].PhotoIDs)
		}
		if len(got.Result.Groups) != 2 || got.Result.Groups[0].KeeperID != "b.jpg" {
			t.Errorf("Groups round-trip mismatch: %+v", got.Result.Groups)
		}
		if len(got.Result.Photos) != 3 {
			t.Fatalf("Expected 3 assignments, got %d", len(got.Result.Photos))
		}
		if !got.Result.Photos["b.jpg"].Keeper || got.Result.Photos["a.jpg"].Keeper {
			t.Error("Keeper flags did not survive the round trip")
		}
	})

	t.Run("GetUnknown", func(t *testing.T) {
		_, err := repo.GetRun(ctx, uuid.NewString())
		if !errors.Is(err, storage.ErrRunNotFound) {
			t.Errorf("Expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		second := sampleResult()
		if err := repo.SaveRun(ctx, second); err != nil {
			t.Fatalf("Failed to save second run: %v", err)
		}

		summaries, err := repo.ListRuns(ctx)
		if err != nil {
			t.Fatalf("Failed to list runs: %v", err)
		}
		if len(summaries) != 2 {
			t.Fatalf("Expected 2 runs, got %d", len(summaries))
		}
		for _, s := range summaries {
			if s.PhotoCount != 3 || s.Clusters != 2 || s.Groups != 2 {
				t.Errorf("Summary counts wrong: %+v", s)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.DeleteRun(ctx, res.RunID); err != nil {
			t.Fatalf("Failed to delete run: %v", err)
		}
		if _, err := repo.GetRun(ctx, res.RunID); !errors.Is(err, storage.ErrRunNotFound) {
			t.Errorf("Deleted run should be gone, got %v", err)
		}
		if err := repo.DeleteRun(ctx, res.RunID); !errors.Is(err, storage.ErrRunNotFound) {
			t.Errorf("Double delete should report not found, got %v", err)
		}
	})
}
