package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskforge-hq/taskforge/pkg/agents"
	"taskforge-hq/taskforge/pkg/cache"
	"taskforge-hq/taskforge/pkg/config"
	"taskforge-hq/taskforge/pkg/ledger"
	"taskforge-hq/taskforge/pkg/routing"
	"taskforge-hq/taskforge/pkg/telemetry/logging"
	"taskforge-hq/taskforge/pkg/telemetry/metrics"
	"taskforge-hq/taskforge/pkg/templates"
)

var runFlags struct {
	template string
	count    int
	output   string
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate benchmark tasks from the configured templates",
	Long: `Generate benchmark tasks by running the ideation and code generation
stages for each selected template.

Every generation request is routed through the configured strategy,
gated by the budget, and its cost is recorded against the task's ID.

Examples:
  # Generate one task per configured template
  taskforge run

  # Generate three tasks from one template
  taskforge run --template code-review --count 3

  # Validate config without generating anything
  taskforge run --dry-run`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.template, "template", "t", "", "generate from one template only")
	runCmd.Flags().IntVarP(&runFlags.count, "count", "n", 1, "tasks to generate per template")
	runCmd.Flags().StringVarP(&runFlags.output, "output", "o", "./out", "directory for generated task files")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without generating")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	logging.Setup(cfg.Telemetry.Logging)

	if runFlags.dryRun {
		fmt.Println("Configuration valid")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, err := buildRouter(cfg)
	if err != nil {
		return err
	}
	promptCache := buildCache(cfg.Cache)

	registry, err := templates.LoadDir(cfg.Templates.Dir)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	if registry.Len() == 0 {
		return fmt.Errorf("no templates in %s", cfg.Templates.Dir)
	}

	if cfg.Templates.Watch {
		watcher, err := templates.NewWatcher(registry)
		if err != nil {
			return fmt.Errorf("failed to create template watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Error("template watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	collector := metrics.NewCollector()
	router.SetObserver(collector.Routing)
	if cfg.Telemetry.Metrics.Enabled != nil && *cfg.Telemetry.Metrics.Enabled {
		startMetricsServer(ctx, cfg.Telemetry.Metrics, collector)
	}

	if cfg.Ledger.Enabled {
		store, mirror, scheduler, err := startLedger(ctx, cfg.Ledger, router)
		if err != nil {
			return err
		}
		defer store.Close()
		defer mirror.Stop()
		defer scheduler.Stop()
	}

	if err := os.MkdirAll(runFlags.output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	names := registry.Names()
	if runFlags.template != "" {
		if _, ok := registry.Get(runFlags.template); !ok {
			return fmt.Errorf("unknown template %q (have %v)", runFlags.template, names)
		}
		names = []string{runFlags.template}
	}

	ideation := agents.NewIdeationAgent(router, promptCache, nil)
	codegen := agents.NewCodeGenAgent(router, promptCache, nil)

	generated := 0
	for _, name := range names {
		tmpl, _ := registry.Get(name)
		for i := 0; i < runFlags.count; i++ {
			if ctx.Err() != nil {
				slog.Info("generation interrupted", "generated", generated)
				return ctx.Err()
			}

			task, err := generateOne(ctx, ideation, codegen, tmpl)
			if err != nil {
				slog.Error("task generation failed", "template", name, "error", err)
				continue
			}
			if err := writeTask(runFlags.output, task); err != nil {
				return err
			}
			generated++

			collector.Cache.Refresh(promptCache)
			collector.Cost.Refresh(router.CostTracker())
		}
	}

	printRunSummary(generated, router, promptCache)
	return nil
}

func generateOne(ctx context.Context, ideation *agents.IdeationAgent, codegen *agents.CodeGenAgent, tmpl *templates.TaskTemplate) (*agents.GeneratedTask, error) {
	idea, err := ideation.GenerateIdea(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	return codegen.GenerateCode(ctx, idea)
}

func writeTask(dir string, task *agents.GeneratedTask) error {
	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	path := filepath.Join(dir, task.Idea.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write task file: %w", err)
	}
	slog.Info("task written", "path", path, "title", task.Idea.Title)
	return nil
}

func startMetricsServer(ctx context.Context, cfg config.MetricsConfig, collector *metrics.Collector) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, collector.Handler())

	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("metrics endpoint listening", "address", cfg.ListenAddress, "path", cfg.Path)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
}

func startLedger(ctx context.Context, cfg config.LedgerConfig, router *routing.MultiModelRouter) (*ledger.Store, *ledger.Mirror, *ledger.Scheduler, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	store, err := ledger.OpenStore(cfg.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	mirror := ledger.NewMirror(router.CostTracker(), store, cfg.FlushInterval)
	mirror.Start(ctx)

	pruner := ledger.NewPruner(store, &ledger.PrunerConfig{
		RetentionDays: cfg.RetentionDays,
		PruneSchedule: cfg.PruneSchedule,
	})
	scheduler := ledger.NewScheduler(pruner)
	if err := scheduler.Start(ctx); err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	return store, mirror, scheduler, nil
}

func printRunSummary(generated int, router *routing.MultiModelRouter, promptCache *cache.PromptCache) {
	report := router.CostTracker().Report()
	stats := router.Stats()
	cacheStats := promptCache.Stats()

	fmt.Printf("\nGenerated %d tasks\n", generated)
	fmt.Printf("Requests: %d total, %d failed, %d budget-rejected, %d used fallback\n",
		stats.TotalRequests, stats.FailedRequests, stats.BudgetRejections, stats.FallbacksUsed)
	fmt.Printf("Cache: %d hits, %d misses (%.1f%% hit rate)\n",
		cacheStats.Hits, cacheStats.Misses, cacheStats.HitRate()*100)
	fmt.Printf("Spent today: $%.2f (remaining $%.2f)\n", report.DailySpent, report.DailyRemaining)
	fmt.Printf("Spent this month: $%.2f (remaining $%.2f)\n", report.MonthlySpent, report.MonthlyRemaining)
	for model, dollars := range report.ByModel {
		fmt.Printf("  %-40s $%.2f\n", model, dollars)
	}
}
