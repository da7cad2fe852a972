package tabular

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/flywheel-apps/roi-import/internal/errors"
)

// LoadOptions control how the input file is read.
type LoadOptions struct {
	Delimiter rune   // CSV field delimiter, ',' when zero
	Sheet     string // Excel sheet name, first sheet when empty
	FirstRow  int    // 1-based header row, 1 when zero
}

// Load reads the input file, dispatching on the file extension.
func Load(path string, opts LoadOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return LoadExcel(path, opts.Sheet, opts.FirstRow)
	case ".csv", ".tsv", ".txt":
		return LoadCSV(path, opts.Delimiter, opts.FirstRow)
	default:
		return nil, errors.Newf("unsupported input file type %q", filepath.Ext(path)).
			Component("tabular").
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}
}

// LoadCSV reads a delimited text file. The header sits at firstRow (1-based);
// earlier lines are skipped.
func LoadCSV(path string, delimiter rune, firstRow int) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("tabular").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.New(err).
			Component("tabular").
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}

	return fromRecords(records, firstRow, path)
}

// LoadExcel reads a spreadsheet via excelize. An empty sheet name selects the
// workbook's first sheet.
func LoadExcel(path, sheet string, firstRow int) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.New(err).
			Component("tabular").
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.New(err).
			Component("tabular").
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Context("sheet", sheet).
			Build()
	}

	return fromRecords(records, firstRow, path)
}

func fromRecords(records [][]string, firstRow int, path string) (*Table, error) {
	if firstRow < 1 {
		firstRow = 1
	}
	if len(records) < firstRow {
		return nil, errors.Newf("no header row at line %d", firstRow).
			Component("tabular").
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}

	headers := make([]string, 0, len(records[firstRow-1]))
	seen := make(map[string]bool)
	for _, h := range records[firstRow-1] {
		h = strings.TrimSpace(h)
		if seen[h] && h != "" {
			return nil, errors.Newf("duplicate column header %q", h).
				Component("tabular").
				Category(errors.CategoryFileParsing).
				Context("path", path).
				Build()
		}
		seen[h] = true
		headers = append(headers, h)
	}

	table := &Table{Headers: headers}
	for i, record := range records[firstRow:] {
		if blankRecord(record) {
			continue
		}
		cells := make(map[string]any, len(headers))
		for j, h := range headers {
			if h == "" || h == StatusColumn || h == LocationColumn || j >= len(record) {
				continue
			}
			if v := parseCell(record[j]); v != nil {
				cells[h] = v
			}
		}
		table.Rows = append(table.Rows, Row{Index: i + 1, Cells: cells})
	}

	table.ensureReportColumns()
	return table, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseCell converts one text cell to its typed value: bool, number kept as
// json.Number, or string. Empty cells become nil.
func parseCell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.EqualFold(s, "true") {
		return true
	}
	if strings.EqualFold(s, "false") {
		return false
	}
	var n json.Number
	if err := json.Unmarshal([]byte(s), &n); err == nil {
		return n
	}
	return s
}
