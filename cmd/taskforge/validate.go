package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskforge-hq/taskforge/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file without starting anything.

All validation errors are reported at once, not just the first.

Examples:
  # Validate the default config
  taskforge validate

  # Validate a specific file
  taskforge validate --config /etc/taskforge/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var validationErr config.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Printf("Configuration invalid: %d error(s)\n", len(validationErr.Errors))
			for _, fieldErr := range validationErr.Errors {
				fmt.Printf("  - %s: %s\n", fieldErr.Field, fieldErr.Message)
			}
			return fmt.Errorf("validation failed")
		}
		return err
	}

	fmt.Println("Configuration valid")
	fmt.Printf("  Providers: %d\n", len(cfg.Providers))
	models := 0
	for _, p := range cfg.Providers {
		models += len(p.Models)
	}
	fmt.Printf("  Models: %d\n", models)
	fmt.Printf("  Strategy: %s\n", cfg.Routing.Strategy)
	fmt.Printf("  Budget: $%.2f/day, $%.2f/month\n", cfg.Budget.Daily, cfg.Budget.Monthly)
	fmt.Printf("  Ledger: enabled=%t\n", cfg.Ledger.Enabled)
	return nil
}
