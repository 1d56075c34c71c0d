// Package audit implements the audit subcommand: scan the collection for
// missing or placeholder covers and repair them.
package audit

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hobbydex/coverart-go/internal/audit"
	"github.com/hobbydex/coverart-go/internal/conf"
	"github.com/hobbydex/coverart-go/internal/coverart"
	"github.com/hobbydex/coverart-go/internal/datastore"
	"github.com/hobbydex/coverart-go/internal/logging"
	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

// Command creates the audit subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Scan the collection and repair missing or placeholder covers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.Context(), settings)
		},
	}

	cmd.Flags().IntVar(&settings.Audit.LimitPerKind, "limit", viper.GetInt("audit.limitperkind"), "Max items repaired per kind, 0 disables, negative means unbounded")
	cmd.Flags().IntVar(&settings.Audit.Concurrency, "concurrency", viper.GetInt("audit.concurrency"), "Max items resolved in flight")
	cmd.Flags().StringVar(&settings.Audit.Interval, "interval", viper.GetString("audit.interval"), "Re-run the audit on this interval, e.g. 24h; empty runs once")

	return cmd
}

func runAudit(ctx context.Context, settings *conf.Settings) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := datastore.NewSQLiteStore(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Failed to close datastore", "error", err)
		}
	}()

	m, err := metrics.NewCoverArtMetrics(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}

	service := coverart.NewService(settings, store, m)
	runner := audit.NewRunner(store, service, m)

	var interval time.Duration
	if settings.Audit.Interval != "" {
		interval, err = time.ParseDuration(settings.Audit.Interval)
		if err != nil {
			return fmt.Errorf("invalid audit interval %q: %w", settings.Audit.Interval, err)
		}
	}

	report(runner.Run(ctx, settings.Audit.LimitPerKind, settings.Audit.Concurrency))
	if interval <= 0 {
		return nil
	}

	logging.Info("Scheduled audit active", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Info("Scheduled audit stopped")
			return nil
		case <-ticker.C:
			report(runner.Run(ctx, settings.Audit.LimitPerKind, settings.Audit.Concurrency))
		}
	}
}

func report(result *audit.Result) {
	for _, kind := range coverart.AllKinds() {
		stats := result.PerKind[kind]
		fmt.Printf("%-10s checked=%d updated=%d\n", kind, stats.Checked, stats.Updated)
	}
	fmt.Printf("%-10s checked=%d updated=%d\n", "total", result.TotalChecked, result.TotalUpdated)
}
