// Package cmd assembles the command line interface.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flywheel-apps/roi-import/cmd/config"
	"github.com/flywheel-apps/roi-import/cmd/importcmd"
	"github.com/flywheel-apps/roi-import/cmd/validate"
	"github.com/flywheel-apps/roi-import/internal/conf"
	"github.com/flywheel-apps/roi-import/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "roi-import",
		Short: "Import image annotations from tabular files into session metadata",
	}

	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		importcmd.Command(settings),
		validate.Command(settings),
		config.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Flywheel.APIKey, "api-key", viper.GetString("flywheel.apikey"), "API key of the form host[:port]:secret")
	rootCmd.PersistentFlags().StringVar(&settings.Flywheel.Host, "host", viper.GetString("flywheel.host"), "Base URL override for the container store")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
