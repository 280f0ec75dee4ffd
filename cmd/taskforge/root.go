package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "taskforge",
	Short: "Taskforge - synthetic benchmark task generator",
	Long: `Taskforge generates synthetic benchmark tasks through a cost-governed,
multi-model LLM routing layer.

It provides:
  - Strategy-based routing across multiple models (round-robin,
    cost-optimized, capability-based, A/B experimental)
  - Daily and monthly budget enforcement with per-model cost tracking
  - Prompt caching with TTL and LRU eviction
  - A durable SQLite usage ledger with scheduled retention pruning`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
