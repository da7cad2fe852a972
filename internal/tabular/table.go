// Package tabular loads the annotation input table and writes the per-row
// status report back out.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/flywheel-apps/roi-import/internal/errors"
)

// Writable result columns appended to every loaded table.
const (
	StatusColumn   = "Gear_Status"
	LocationColumn = "Gear_FW_Location"
)

// ReportName is the default status report file name.
const ReportName = "Data_Import_Status_report.csv"

// Row is one data row. Index is the 1-based position within the table's data
// rows, stable across the run.
type Row struct {
	Index int
	Cells map[string]any
}

// Table holds the loaded rows with the original header order preserved.
type Table struct {
	Headers []string
	Rows    []Row
}

// ensureReportColumns appends the status columns to the header set. Cell
// values are only ever written through SetStatus so stale values from a
// re-imported report file never survive a load.
func (t *Table) ensureReportColumns() {
	for _, col := range []string{StatusColumn, LocationColumn} {
		if !t.HasHeader(col) {
			t.Headers = append(t.Headers, col)
		}
	}
}

// HasHeader reports whether the table has a column with the given name.
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// SetStatus records the outcome and resolved address for one row.
func (t *Table) SetStatus(index int, status, location string) {
	for i := range t.Rows {
		if t.Rows[i].Index == index {
			t.Rows[i].Cells[StatusColumn] = status
			t.Rows[i].Cells[LocationColumn] = location
			return
		}
	}
}

// ValidateMappingColumn checks that the object-name column exists and its
// values are unique. An empty col selects the first header. Returns the
// resolved column name.
func (t *Table) ValidateMappingColumn(col string) (string, error) {
	if len(t.Headers) == 0 {
		return "", errors.Newf("table has no columns").
			Component("tabular").
			Category(errors.CategoryValidation).
			Build()
	}
	if col == "" {
		col = t.Headers[0]
	}
	if !t.HasHeader(col) {
		return "", errors.Newf("mapping column %q not found in table", col).
			Component("tabular").
			Category(errors.CategoryValidation).
			Build()
	}

	seen := make(map[string]int, len(t.Rows))
	var duplicates []string
	for _, row := range t.Rows {
		value := cellString(row.Cells[col])
		if value == "" {
			continue
		}
		seen[value]++
		if seen[value] == 2 {
			duplicates = append(duplicates, value)
		}
	}
	if len(duplicates) > 0 {
		return "", errors.Newf("mapping column %q has duplicate values: %s", col, strings.Join(duplicates, ", ")).
			Component("tabular").
			Category(errors.CategoryValidation).
			Build()
	}

	return col, nil
}

// WriteReport writes the table, status columns included, as a CSV file under
// dir. When the default name already exists a short unique suffix keeps runs
// from clobbering each other. Returns the written path.
func (t *Table) WriteReport(dir string) (string, error) {
	t.ensureReportColumns()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.New(err).
			Component("tabular").
			Category(errors.CategoryFileIO).
			Context("path", dir).
			Build()
	}

	path := filepath.Join(dir, ReportName)
	if _, err := os.Stat(path); err == nil {
		suffix := uuid.New().String()[:8]
		base := strings.TrimSuffix(ReportName, ".csv")
		path = filepath.Join(dir, fmt.Sprintf("%s_%s.csv", base, suffix))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", errors.New(err).
			Component("tabular").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Headers); err != nil {
		return "", errors.New(err).
			Component("tabular").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	record := make([]string, len(t.Headers))
	for _, row := range t.Rows {
		for i, h := range t.Headers {
			record[i] = cellString(row.Cells[h])
		}
		if err := w.Write(record); err != nil {
			return "", errors.New(err).
				Component("tabular").
				Category(errors.CategoryFileIO).
				Context("path", path).
				Build()
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.New(err).
			Component("tabular").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	return path, nil
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
