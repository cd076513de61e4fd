package sync

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"opsdesk/internal/application/sync"
	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/infrastructure/config"
	"opsdesk/internal/infrastructure/database"
	httpRouter "opsdesk/internal/interfaces/http"
	"opsdesk/internal/shared/biztime"
	"opsdesk/internal/shared/logger"
)

var (
	env           string
	kind          string
	rangeStart    string
	rangeEnd      string
	forceReenrich bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a one-shot synchronization",
		Long:  `Run a single synchronization against the upstream helpdesk and exit.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "incremental", "Sync kind (full, incremental, range)")
	cmd.Flags().StringVar(&rangeStart, "range-start", "", "Window start for range sync (RFC3339)")
	cmd.Flags().StringVar(&rangeEnd, "range-end", "", "Window end for range sync (RFC3339)")
	cmd.Flags().BoolVar(&forceReenrich, "force-reenrich", false, "Re-run timeline enrichment on already enriched tickets")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	runKind := syncrun.Kind(kind)
	if !runKind.IsValid() {
		return fmt.Errorf("invalid sync kind: %s", kind)
	}

	opts, err := parseOptions()
	if err != nil {
		return err
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	orchestrator, err := httpRouter.BuildOrchestrator(cfg, database.Get(), logger.NewLogger())
	if err != nil {
		return fmt.Errorf("failed to wire sync engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := orchestrator.TriggerSync(ctx, runKind, opts)
	if err != nil {
		printSummary(summary)
		return fmt.Errorf("sync failed: %w", err)
	}

	printSummary(summary)
	return nil
}

func parseOptions() (sync.TriggerOptions, error) {
	opts := sync.TriggerOptions{ForceReenrich: forceReenrich}

	if rangeStart != "" {
		start, err := biztime.ParseRFC3339(rangeStart)
		if err != nil {
			return opts, err
		}
		opts.RangeStart = &start
	}
	if rangeEnd != "" {
		end, err := biztime.ParseRFC3339(rangeEnd)
		if err != nil {
			return opts, err
		}
		opts.RangeEnd = &end
	}

	if syncrun.Kind(kind) == syncrun.KindRange && (opts.RangeStart == nil || opts.RangeEnd == nil) {
		return opts, fmt.Errorf("range sync requires --range-start and --range-end")
	}

	return opts, nil
}

func printSummary(summary sync.RunSummary) {
	w := os.Stdout

	fmt.Fprintf(w, "run:          %s\n", summary.RunUID)
	fmt.Fprintf(w, "kind:         %s\n", summary.Kind)
	fmt.Fprintf(w, "status:       %s\n", summary.Status)
	fmt.Fprintf(w, "technicians:  %d\n", summary.Counts.Technicians)
	fmt.Fprintf(w, "tickets:      %d\n", summary.Counts.Tickets)
	fmt.Fprintf(w, "requesters:   %d\n", summary.Counts.Requesters)
	fmt.Fprintf(w, "satisfaction: %d\n", summary.Counts.Satisfaction)
	fmt.Fprintf(w, "enriched:     %d\n", summary.Counts.Enriched)
	fmt.Fprintf(w, "failed:       %d\n", summary.Counts.Failed)
	if summary.CompletedAt != nil {
		fmt.Fprintf(w, "duration:     %s\n", summary.CompletedAt.Sub(summary.StartedAt).Round(time.Second))
	}
	if summary.Error != "" {
		fmt.Fprintf(w, "error:        %s\n", summary.Error)
	}
}
