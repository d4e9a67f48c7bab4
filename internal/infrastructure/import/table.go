package poimport

import (
	"path/filepath"
	"strings"
)

// Format is the file format of an import upload
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from the file name extension
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", newFileError(ErrCodeImportUnsupportedFormat, ErrUnsupportedFormat,
		"unsupported file type %q, expected .csv or .xlsx", filepath.Ext(filename))
}

// Row is one data row keyed by canonical column name
type Row struct {
	// Number is the 1-based sheet row; the first data row is 2
	Number int
	Data   map[string]string
}

// Get returns the value for a canonical column
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Table is a header plus data rows read from a file
type Table struct {
	Headers []string
	Rows    []Row
}

// newTable maps raw records to canonical columns. records[0] is the header.
func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, newFileError(ErrCodeImportEmptyFile, ErrEmptyFile, "import file is empty")
	}
	header := records[0]
	columns := make([]string, len(header))
	nonEmpty := false
	for i, h := range header {
		columns[i] = CanonicalColumn(h)
		if columns[i] != "" {
			nonEmpty = true
		}
	}
	if !nonEmpty {
		return nil, newFileError(ErrCodeImportMissingHeader, ErrMissingHeader, "import file missing header row")
	}

	t := &Table{Headers: columns, Rows: make([]Row, 0, len(records)-1)}
	for i, rec := range records[1:] {
		row := Row{Number: i + 2, Data: make(map[string]string, len(columns))}
		for j, col := range columns {
			if col == "" {
				continue
			}
			if j < len(rec) {
				row.Data[col] = strings.TrimSpace(rec[j])
			} else {
				row.Data[col] = ""
			}
		}
		if row.IsEmpty() {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// HasColumn reports whether a canonical column is present
func (t *Table) HasColumn(column string) bool {
	for _, h := range t.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// MissingColumns returns the required columns absent from the header
func (t *Table) MissingColumns(required ...string) []string {
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}
