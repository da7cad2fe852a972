// Package config implements the config subcommand.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flywheel-apps/roi-import/internal/conf"
)

// Command creates the config command group.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(saveCommand(settings))

	return cmd
}

// saveCommand writes the effective settings, flags and environment included,
// to a YAML config file.
func saveCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "save [path]",
		Short: "Write the effective settings to a config file",
		Long: "Write the settings the tool is currently running with, flags and " +
			"environment included, to a YAML config file. Without a path argument " +
			"the first default config location is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := targetPath(args)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("error creating config directory: %w", err)
			}
			if err := conf.SaveYAMLConfig(path, settings); err != nil {
				return err
			}

			fmt.Printf("settings written to %s\n", path)
			return nil
		},
	}
}

func targetPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	paths, err := conf.GetDefaultConfigPaths()
	if err != nil {
		return "", err
	}
	return filepath.Join(paths[0], "config.yaml"), nil
}
