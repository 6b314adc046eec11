package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("default max open conns = %d; want 25", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("default max idle conns = %d; want 5", cfg.Database.MaxIdleConns)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("default web port = %d; want 8080", cfg.Web.Port)
	}
	if cfg.Thresholds.DistanceKm != 1.0 {
		t.Errorf("default distance = %f; want 1.0", cfg.Thresholds.DistanceKm)
	}
	if cfg.Thresholds.SimilarityBits != 10 {
		t.Errorf("default similarity bits = %d; want 10", cfg.Thresholds.SimilarityBits)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("CLUSTER_DISTANCE_KM", "2.5")
	t.Setenv("SIMILARITY_THRESHOLD_BITS", "6")

	cfg := Load()

	if cfg.Database.URL != "postgres://test" {
		t.Errorf("database url = %q", cfg.Database.URL)
	}
	if cfg.Database.MaxOpenConns != 50 {
		t.Errorf("max open conns = %d; want 50", cfg.Database.MaxOpenConns)
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("web port = %d; want 9090", cfg.Web.Port)
	}
	if cfg.Thresholds.DistanceKm != 2.5 {
		t.Errorf("distance = %f; want 2.5", cfg.Thresholds.DistanceKm)
	}
	if cfg.Thresholds.SimilarityBits != 6 {
		t.Errorf("similarity bits = %d; want 6", cfg.Thresholds.SimilarityBits)
	}
}

func TestLoadIgnoresInvalidEnv(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("CLUSTER_TIME_HOURS", "-3")

	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Thresholds.TimeHours != 6.0 {
		t.Errorf("negative float should fall back to default, got %f", cfg.Thresholds.TimeHours)
	}
}

func TestWebAddr(t *testing.T) {
	w := WebConfig{Host: "127.0.0.1", Port: 3000}
	if w.Addr() != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q", w.Addr())
	}
}

func TestPresetThresholds(t *testing.T) {
	cfg := Load()

	th, err := cfg.PresetThresholds("road-trip")
	if err != nil {
		t.Fatalf("road-trip preset should exist: %v", err)
	}
	if th.DistanceKm != 25.0 || th.TimeHours != 12.0 {
		t.Errorf("road-trip preset = %+v", th)
	}

	if _, err := cfg.PresetThresholds("nonexistent"); err == nil {
		t.Error("unknown preset should error")
	}
}
