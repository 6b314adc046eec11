package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yp-ac/album-maker/internal/config"
	"github.com/yp-ac/album-maker/internal/storage"
	"github.com/yp-ac/album-maker/internal/storage/postgres"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored pipeline runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a stored run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

// openStore connects to PostgreSQL and returns the run repository with its
// pool for cleanup.
func openStore(cmd *cobra.Command) (storage.RunStore, *postgres.Pool, error) {
	cfg := config.Load()
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	pool, err := postgres.Connect(cmd.Context(), &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return postgres.NewRunRepository(pool), pool, nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, pool, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	summaries, err := store.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("No runs stored.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tCREATED\tPHOTOS\tCLUSTERS\tGROUPS\tDIST KM\tTIME H\tBITS")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.2f\t%.1f\t%d\n",
			s.RunID,
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.PhotoCount,
			s.Clusters,
			s.Groups,
			s.Thresholds.DistanceKm,
			s.Thresholds.TimeHours,
			s.Thresholds.SimilarityBits,
		)
	}
	return w.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, pool, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	run, err := store.GetRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("loading run %s: %w", args[0], err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	store, pool, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := store.DeleteRun(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting run %s: %w", args[0], err)
	}
	fmt.Printf("Deleted run %s\n", args[0])
	return nil
}
