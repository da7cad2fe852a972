// Package validate implements the validate subcommand, an offline check of
// the input file that needs no store connection.
package validate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flywheel-apps/roi-import/internal/annotation"
	"github.com/flywheel-apps/roi-import/internal/conf"
	"github.com/flywheel-apps/roi-import/internal/hierarchy"
	"github.com/flywheel-apps/roi-import/internal/tabular"
)

// placeholderID stands in for the identifiers that only the matched file can
// provide, so offline validation exercises every other rule.
const placeholderID = "unresolved"

// Command creates the validate command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Check an input file without touching the container store",
		Long: "Parse the input file and validate every row: addressing columns, " +
			"tool type and field constraints. Instance identifiers live on the " +
			"stored files and are only checked during an import.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Import.InputFile = args[0]
			return runValidate(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Import.Delimiter, "delimiter", viper.GetString("import.delimiter"), "CSV field delimiter")
	cmd.Flags().IntVar(&settings.Import.FirstRow, "first-row", viper.GetInt("import.firstrow"), "1-based row number holding the column headers")
	cmd.Flags().StringVar(&settings.Import.Sheet, "sheet", viper.GetString("import.sheet"), "Excel sheet name, first sheet when empty")
	cmd.Flags().StringVar(&settings.Import.MappingColumn, "mapping-column", viper.GetString("import.mappingcolumn"), "Column holding the object name, first column when empty")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}

func runValidate(settings *conf.Settings) error {
	table, err := tabular.Load(settings.Import.InputFile, tabular.LoadOptions{
		Delimiter: delimiterRune(settings.Import.Delimiter),
		Sheet:     settings.Import.Sheet,
		FirstRow:  settings.Import.FirstRow,
	})
	if err != nil {
		return err
	}

	if _, err := table.ValidateMappingColumn(settings.Import.MappingColumn); err != nil {
		return err
	}

	valid := 0
	for _, row := range table.Rows {
		if problem := checkRow(row.Cells); problem != "" {
			fmt.Printf("row %d: %s\n", row.Index, problem)
			continue
		}
		valid++
	}

	fmt.Printf("%d/%d rows valid\n", valid, len(table.Rows))
	if valid < len(table.Rows) {
		return fmt.Errorf("%d rows failed validation", len(table.Rows)-valid)
	}
	return nil
}

// checkRow validates everything that does not require the store: the
// addressing columns, forbidden fields and the tool type. Returns an empty
// string when the row passes.
func checkRow(cells map[string]any) string {
	clone := make(map[string]any, len(cells))
	for k, v := range cells {
		clone[k] = v
	}

	if _, err := hierarchy.PathFromRow(clone); err != nil {
		return err.Error()
	}

	fields := annotation.FieldsFromRow(clone, annotation.FileIDs{
		SeriesInstanceUID: placeholderID,
		SOPInstanceUID:    placeholderID,
		StudyInstanceUID:  placeholderID,
		PatientID:         placeholderID,
	})

	ann, err := annotation.Build(fields)
	if err != nil {
		return err.Error()
	}
	if !ann.Valid {
		return fmt.Sprintf("unknown tool type %q", ann.ToolType)
	}

	return ""
}

func delimiterRune(s string) rune {
	if s == "" {
		return ','
	}
	return []rune(s)[0]
}
