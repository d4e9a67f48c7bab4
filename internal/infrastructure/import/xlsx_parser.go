package poimport

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// XLSXParser reads the first worksheet of an Excel workbook
type XLSXParser struct {
	sheet string
}

// NewXLSXParser creates a parser; sheet selects a worksheet by name and
// defaults to the first one
func NewXLSXParser(sheet string) *XLSXParser {
	return &XLSXParser{sheet: sheet}
}

// Parse decodes an XLSX workbook into a table
func (p *XLSXParser) Parse(data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, newFileError(ErrCodeImportEmptyFile, ErrEmptyFile, "import file is empty")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newFileError(ErrCodeImportInvalidFile, err, "failed to open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheet := p.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, newFileError(ErrCodeImportEmptyFile, ErrEmptyFile, "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, newFileError(ErrCodeImportInvalidFile, err, "failed to read sheet %q: %v", sheet, err)
	}
	return newTable(records)
}
