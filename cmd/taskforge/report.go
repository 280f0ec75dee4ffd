package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskforge-hq/taskforge/pkg/config"
	"taskforge-hq/taskforge/pkg/ledger"
)

var reportFlags struct {
	since  time.Duration
	format string
	taskID string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a spending report from the usage ledger",
	Long: `Print a per-model spending report aggregated from the usage ledger.

The ledger must be enabled in the configuration; the report reads the
rows the mirror has already flushed.

Examples:
  # Last 30 days, per-model totals
  taskforge report --since 720h

  # Spending for one task
  taskforge report --task-id 6e1f...

  # Machine-readable output
  taskforge report --format json`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().DurationVar(&reportFlags.since, "since", 30*24*time.Hour, "report window")
	reportCmd.Flags().StringVar(&reportFlags.format, "format", "text", "output format: text, json")
	reportCmd.Flags().StringVar(&reportFlags.taskID, "task-id", "", "show records for one task")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Ledger.Enabled {
		return fmt.Errorf("ledger is not enabled in %s", cfgFile)
	}

	store, err := ledger.OpenStore(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	since := time.Now().UTC().Add(-reportFlags.since)

	if reportFlags.taskID != "" {
		return reportTask(ctx, store, reportFlags.taskID)
	}

	summaries, err := store.Summarize(ctx, since)
	if err != nil {
		return err
	}

	if reportFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No usage recorded in the window")
		return nil
	}

	var totalCents int64
	fmt.Printf("%-40s %8s %12s %12s %10s\n", "MODEL", "CALLS", "INPUT TOK", "OUTPUT TOK", "COST")
	for _, s := range summaries {
		fmt.Printf("%-40s %8d %12d %12d %9.2f$\n",
			s.Model, s.Calls, s.InputTokens, s.OutputTokens, float64(s.CostCents)/100)
		totalCents += s.CostCents
	}
	fmt.Printf("%-40s %8s %12s %12s %9.2f$\n", "TOTAL", "", "", "", float64(totalCents)/100)
	return nil
}

func reportTask(ctx context.Context, store *ledger.Store, taskID string) error {
	records, err := store.Records(ctx, ledger.Query{TaskID: taskID})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No records for task %s\n", taskID)
		return nil
	}

	var totalCents uint64
	for _, r := range records {
		fmt.Printf("%s  %-40s in=%d out=%d %.2f$\n",
			r.Usage.Timestamp.Format(time.RFC3339),
			r.Usage.Model,
			r.Usage.InputTokens,
			r.Usage.OutputTokens,
			float64(r.Usage.CostCents)/100,
		)
		totalCents += r.Usage.CostCents
	}
	fmt.Printf("Task %s total: %.2f$ across %d calls\n", taskID, float64(totalCents)/100, len(records))
	return nil
}
