package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	auditcmd "github.com/hobbydex/coverart-go/cmd/audit"
	resolvecmd "github.com/hobbydex/coverart-go/cmd/resolve"
	"github.com/hobbydex/coverart-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coverart",
		Short: "Cover-art resolution and audit CLI",
		Long: "coverart resolves cover images for media collections from public\n" +
			"sources and audits stored items for missing or placeholder covers.",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		auditcmd.Command(settings),
		resolvecmd.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringSliceVar(&settings.Locales, "locales", viper.GetStringSlice("locales"), "Ordered encyclopedia language editions to try, preferred first")
	rootCmd.PersistentFlags().StringVar(&settings.Output.SQLite.Path, "db", viper.GetString("output.sqlite.path"), "Path to the SQLite database file")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
