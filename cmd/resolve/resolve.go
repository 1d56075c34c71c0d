// Package resolve implements the resolve subcommand: look up one cover URL
// for a kind and title without touching the item store.
package resolve

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hobbydex/coverart-go/internal/conf"
	"github.com/hobbydex/coverart-go/internal/coverart"
	"github.com/hobbydex/coverart-go/internal/datastore"
	"github.com/hobbydex/coverart-go/internal/logging"
	"github.com/hobbydex/coverart-go/internal/observability/metrics"
)

// Command creates the resolve subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <kind> <title>",
		Short: "Resolve a single cover URL for a kind and title",
		Long: "Resolve walks the full resolver chain for one title and prints the\n" +
			"first validated cover URL. Kinds: " + kindList() + ".",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, settings, args)
		},
	}
}

func kindList() string {
	kinds := coverart.AllKinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

func runResolve(cmd *cobra.Command, settings *conf.Settings, args []string) error {
	kind := coverart.Kind(strings.ToLower(args[0]))
	if !kind.Valid() {
		return fmt.Errorf("unknown kind %q, expected one of: %s", args[0], kindList())
	}
	title := strings.Join(args[1:], " ")

	// The persisted cache is optional here; resolution works without it.
	var store datastore.Interface
	if settings.Output.SQLite.Enabled {
		sqliteStore := datastore.NewSQLiteStore(settings)
		if err := sqliteStore.Open(); err != nil {
			logging.Warn("Continuing without persisted cache", "error", err)
		} else {
			store = sqliteStore
			defer func() {
				if err := sqliteStore.Close(); err != nil {
					logging.Error("Failed to close datastore", "error", err)
				}
			}()
		}
	}

	m, err := metrics.NewCoverArtMetrics(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}

	service := coverart.NewService(settings, store, m)
	url := service.PickCover(cmd.Context(), kind, title, "")

	if coverart.IsPlaceholder(url) {
		fmt.Println("No cover found from any source, generated placeholder:")
	}
	fmt.Println(url)
	return nil
}
