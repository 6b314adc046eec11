package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yp-ac/album-maker/internal/album"
	"github.com/yp-ac/album-maker/internal/analysis"
	"github.com/yp-ac/album-maker/internal/config"
	"github.com/yp-ac/album-maker/internal/storage/postgres"
)

var processCmd = &cobra.Command{
	Use:   "process <directory>",
	Short: "Analyze a photo directory and run the album pipeline",
	Long: `Scan a directory for photos, extract GPS positions, timestamps,
sharpness scores and perceptual fingerprints, then cluster the photos by
place and time and group near-duplicate shots.

The result is printed as JSON. Use --output to write it to a file and
--save to persist it to the configured PostgreSQL database.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().Float64("distance-km", 0, "Max centroid distance in km for merging clusters (default from config)")
	processCmd.Flags().Float64("time-hours", 0, "Max time gap in hours for merging clusters (default from config)")
	processCmd.Flags().Int("similarity-bits", 0, "Max fingerprint Hamming distance for duplicates (default from config)")
	processCmd.Flags().String("preset", "", "Named threshold preset (default, city-walk, road-trip, strict-duplicates)")
	processCmd.Flags().Int("concurrency", 4, "Number of photos analyzed in parallel")
	processCmd.Flags().String("output", "", "Write the result JSON to this file instead of stdout")
	processCmd.Flags().Bool("save", false, "Persist the run to the configured database")
	processCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
}

// resolveProcessThresholds layers the config defaults, an optional preset,
// and any explicitly set flags.
func resolveProcessThresholds(cmd *cobra.Command, cfg *config.Config) (album.Thresholds, error) {
	t := cfg.Thresholds

	if preset := mustGetString(cmd, "preset"); preset != "" {
		pt, err := cfg.PresetThresholds(preset)
		if err != nil {
			return album.Thresholds{}, err
		}
		t = pt
	}

	if cmd.Flags().Changed("distance-km") {
		t.DistanceKm = mustGetFloat64(cmd, "distance-km")
	}
	if cmd.Flags().Changed("time-hours") {
		t.TimeHours = mustGetFloat64(cmd, "time-hours")
	}
	if cmd.Flags().Changed("similarity-bits") {
		t.SimilarityBits = mustGetInt(cmd, "similarity-bits")
	}

	if t.DistanceKm < 0 || t.TimeHours < 0 || t.SimilarityBits < 0 {
		return album.Thresholds{}, fmt.Errorf("thresholds must be non-negative")
	}
	return t, nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	thresholds, err := resolveProcessThresholds(cmd, cfg)
	if err != nil {
		return err
	}

	dir := args[0]
	photos, failures, err := analysis.AnalyzeDir(ctx, dir, analysis.Options{
		Concurrency:  mustGetInt(cmd, "concurrency"),
		ShowProgress: !mustGetBool(cmd, "no-progress"),
	})
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", dir, err)
	}
	for _, f := range failures {
		slog.Warn("skipping photo", "path", f.Path, "error", f.Err)
	}
	if len(photos) == 0 {
		return fmt.Errorf("no usable photos found in %s", dir)
	}

	slog.Info("running pipeline",
		"photos", len(photos),
		"distance_km", thresholds.DistanceKm,
		"time_hours", thresholds.TimeHours,
		"similarity_bits", thresholds.SimilarityBits,
	)

	res, err := album.Run(photos, thresholds)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	duplicates := 0
	for _, a := range res.Photos {
		if !a.Keeper {
			duplicates++
		}
	}
	slog.Info("pipeline finished",
		"run_id", res.RunID,
		"clusters", len(res.Clusters),
		"groups", len(res.Groups),
		"duplicates", duplicates,
	)

	if mustGetBool(cmd, "save") {
		if err := saveRun(ctx, cfg, res); err != nil {
			return err
		}
		slog.Info("run saved", "run_id", res.RunID)
	}

	return writeResult(res, mustGetString(cmd, "output"))
}

// saveRun persists the result to PostgreSQL.
func saveRun(ctx context.Context, cfg *config.Config, res *album.Result) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("--save requires the DATABASE_URL environment variable")
	}
	pool, err := postgres.Connect(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := postgres.NewRunRepository(pool).SaveRun(ctx, res); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// writeResult prints the result JSON to stdout or the given file.
func writeResult(res *album.Result, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}
