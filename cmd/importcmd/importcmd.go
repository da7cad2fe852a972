// Package importcmd implements the import subcommand.
package importcmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flywheel-apps/roi-import/internal/conf"
	"github.com/flywheel-apps/roi-import/internal/flywheel"
	"github.com/flywheel-apps/roi-import/internal/importer"
	"github.com/flywheel-apps/roi-import/internal/logging"
	"github.com/flywheel-apps/roi-import/internal/tabular"
)

// Command creates the import command, which runs a full annotation import
// against the container store.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [input-file]",
		Short: "Import annotations from a CSV or Excel file",
		Long: "Resolve each row of the input file to a stored image file, build the " +
			"annotation it describes and merge it into the owning session's metadata. " +
			"Per-row outcomes are written to a status report next to the input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Import.InputFile = args[0]
			return runImport(cmd, settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().BoolVar(&settings.Import.DryRun, "dry-run", viper.GetBool("import.dryrun"), "Resolve and validate rows without writing metadata")
	cmd.Flags().StringVar(&settings.Import.Delimiter, "delimiter", viper.GetString("import.delimiter"), "CSV field delimiter")
	cmd.Flags().IntVar(&settings.Import.FirstRow, "first-row", viper.GetInt("import.firstrow"), "1-based row number holding the column headers")
	cmd.Flags().StringVar(&settings.Import.Sheet, "sheet", viper.GetString("import.sheet"), "Excel sheet name, first sheet when empty")
	cmd.Flags().StringVar(&settings.Import.MappingColumn, "mapping-column", viper.GetString("import.mappingcolumn"), "Column holding the object name, first column when empty")
	cmd.Flags().StringVar(&settings.Import.OutputDir, "output", viper.GetString("import.outputdir"), "Directory for the status report")
	cmd.Flags().IntVar(&settings.Import.Workers, "workers", viper.GetInt("import.workers"), "Row-level parallelism")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}

func runImport(cmd *cobra.Command, settings *conf.Settings) error {
	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}

	logger := logging.ForService("import")
	if settings.Main.Log.Enabled {
		fileLogger, closeLogger, err := logging.NewFileLogger(settings.Main.Log.Path, "import", slog.LevelInfo)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "error closing log file: %v\n", err)
			}
		}()
		logger = fileLogger
	}

	client, err := flywheel.NewClient(&settings.Flywheel)
	if err != nil {
		return err
	}

	table, err := tabular.Load(settings.Import.InputFile, tabular.LoadOptions{
		Delimiter: delimiterRune(settings.Import.Delimiter),
		Sheet:     settings.Import.Sheet,
		FirstRow:  settings.Import.FirstRow,
	})
	if err != nil {
		return err
	}

	orch := importer.New(client, importer.Options{
		DryRun:        settings.Import.DryRun,
		Workers:       settings.Import.Workers,
		MappingColumn: settings.Import.MappingColumn,
	})

	result, err := orch.Run(cmd.Context(), table)
	if err != nil {
		return err
	}

	reportPath, err := table.WriteReport(outputDir(settings))
	if err != nil {
		return err
	}

	if logger != nil {
		logger.Info("import complete",
			"total", result.Total,
			"succeeded", result.Succeeded,
			"report", reportPath)
	}
	fmt.Printf("%d/%d rows imported, report written to %s\n", result.Succeeded, result.Total, reportPath)

	return nil
}

func outputDir(settings *conf.Settings) string {
	if settings.Import.OutputDir != "" {
		return settings.Import.OutputDir
	}
	return "."
}

func delimiterRune(s string) rune {
	if s == "" {
		return ','
	}
	return []rune(s)[0]
}
