package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/yp-ac/album-maker/internal/album"
)

//go:embed presets.yaml
var presetsYAML []byte

type Config struct {
	Database   DatabaseConfig
	Web        WebConfig
	Thresholds album.Thresholds
	Presets    PresetsConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type WebConfig struct {
	Host string // defaults to 0.0.0.0
	Port int    // defaults to 8080
}

// Addr returns the host:port the web server binds to.
func (c *WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type PresetsConfig struct {
	Presets map[string]Preset `yaml:"presets"`
}

type Preset struct {
	DistanceKm     float64 `yaml:"distance_km"`
	TimeHours      float64 `yaml:"time_hours"`
	SimilarityBits int     `yaml:"similarity_bits"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a non-negative
// finite float. Returns the default value if unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && !math.IsInf(f, 1) {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var presets PresetsConfig
	if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
		// Embedded file, this cannot fail for a correct build.
		panic("failed to unmarshal embedded presets.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
		Thresholds: album.Thresholds{
			DistanceKm:     envFloat("CLUSTER_DISTANCE_KM", 1.0),
			TimeHours:      envFloat("CLUSTER_TIME_HOURS", 6.0),
			SimilarityBits: envInt("SIMILARITY_THRESHOLD_BITS", 10),
		},
		Presets: presets,
	}
}

// PresetThresholds resolves a named preset from the embedded catalog.
func (c *Config) PresetThresholds(name string) (album.Thresholds, error) {
	p, ok := c.Presets.Presets[name]
	if !ok {
		return album.Thresholds{}, fmt.Errorf("unknown preset %q", name)
	}
	return album.Thresholds{
		DistanceKm:     p.DistanceKm,
		TimeHours:      p.TimeHours,
		SimilarityBits: p.SimilarityBits,
	}, nil
}
