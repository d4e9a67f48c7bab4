package poimport

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Import limits
const (
	DefaultMaxRows   = 500
	DefaultMaxBytes  = 5 << 20
	DefaultMaxErrors = 100
)

// LineRow is one parsed quick-entry line from an import file
type LineRow struct {
	RowNumber   int              `json:"row_number"`
	ProductCode string           `json:"product_code"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Errors      []RowError       `json:"errors,omitempty"`
}

// Valid reports whether the row parsed without errors
func (r LineRow) Valid() bool {
	return len(r.Errors) == 0
}

// ParseResult is the outcome of parsing an import file
type ParseResult struct {
	Rows   []LineRow
	Errors *ErrorCollection
}

// TotalRows returns the number of non-empty data rows
func (r *ParseResult) TotalRows() int {
	return len(r.Rows)
}

// ValidRows returns the rows that parsed cleanly
func (r *ParseResult) ValidRows() []LineRow {
	valid := make([]LineRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		if row.Valid() {
			valid = append(valid, row)
		}
	}
	return valid
}

// ErrorRowCount returns the number of rows with at least one error
func (r *ParseResult) ErrorRowCount() int {
	n := 0
	for _, row := range r.Rows {
		if !row.Valid() {
			n++
		}
	}
	return n
}

// rawLine carries the string cells through struct validation
type rawLine struct {
	ProductCode string `validate:"required,max=50,product_code"`
	Quantity    string `validate:"required,decimal_str"`
	UnitPrice   string `validate:"omitempty,decimal_str"`
	Notes       string `validate:"max=500"`
}

// LineParser turns CSV or XLSX uploads into quick-entry lines
type LineParser struct {
	maxRows   int
	maxBytes  int
	maxErrors int
	sheet     string
	validate  *validator.Validate
}

// LineParserOption configures a LineParser
type LineParserOption func(*LineParser)

// WithMaxRows caps the number of data rows
func WithMaxRows(n int) LineParserOption {
	return func(p *LineParser) {
		if n > 0 {
			p.maxRows = n
		}
	}
}

// WithMaxBytes caps the upload size
func WithMaxBytes(n int) LineParserOption {
	return func(p *LineParser) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// WithMaxErrors caps the number of reported row errors
func WithMaxErrors(n int) LineParserOption {
	return func(p *LineParser) {
		if n > 0 {
			p.maxErrors = n
		}
	}
}

// WithSheet selects the worksheet for XLSX uploads
func WithSheet(name string) LineParserOption {
	return func(p *LineParser) {
		p.sheet = name
	}
}

// NewLineParser creates a parser with default limits
func NewLineParser(opts ...LineParserOption) *LineParser {
	p := &LineParser{
		maxRows:   DefaultMaxRows,
		maxBytes:  DefaultMaxBytes,
		maxErrors: DefaultMaxErrors,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	_ = p.validate.RegisterValidation("product_code", validateProductCode)
	_ = p.validate.RegisterValidation("decimal_str", validateDecimalString)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads the file and validates every row. File-level problems are
// returned as *FileError; row problems are attached to each LineRow.
func (p *LineParser) Parse(data []byte, format Format) (*ParseResult, error) {
	if len(data) > p.maxBytes {
		return nil, newFileError(ErrCodeImportFileTooLarge, ErrFileTooLarge,
			"file size %d exceeds the limit of %d bytes", len(data), p.maxBytes)
	}

	table, err := p.readTable(data, format)
	if err != nil {
		return nil, err
	}
	if missing := table.MissingColumns(ColumnProductCode, ColumnQuantity); len(missing) > 0 {
		return nil, newFileError(ErrCodeImportMissingColumns, ErrMissingColumns,
			"missing required columns: %s", strings.Join(missing, ", "))
	}
	if len(table.Rows) == 0 {
		return nil, newFileError(ErrCodeImportEmptyFile, ErrNoDataRows, "import file contains no data rows")
	}
	if len(table.Rows) > p.maxRows {
		return nil, newFileError(ErrCodeImportTooManyRows, ErrTooManyRows,
			"file has %d rows, the limit is %d", len(table.Rows), p.maxRows)
	}

	result := &ParseResult{
		Rows:   make([]LineRow, 0, len(table.Rows)),
		Errors: NewErrorCollection(p.maxErrors),
	}
	for i := range table.Rows {
		line := p.parseRow(&table.Rows[i])
		for _, e := range line.Errors {
			result.Errors.Add(e)
		}
		result.Rows = append(result.Rows, line)
	}
	return result, nil
}

func (p *LineParser) readTable(data []byte, format Format) (*Table, error) {
	switch format {
	case FormatCSV:
		return NewCSVParser().Parse(data)
	case FormatXLSX:
		return NewXLSXParser(p.sheet).Parse(data)
	}
	return nil, newFileError(ErrCodeImportUnsupportedFormat, ErrUnsupportedFormat, "unsupported format %q", format)
}

func (p *LineParser) parseRow(row *Row) LineRow {
	raw := rawLine{
		ProductCode: strings.ToUpper(row.Get(ColumnProductCode)),
		Quantity:    normalizeNumber(row.Get(ColumnQuantity)),
		UnitPrice:   normalizeNumber(row.Get(ColumnUnitPrice)),
		Notes:       row.Get(ColumnNotes),
	}
	line := LineRow{
		RowNumber:   row.Number,
		ProductCode: raw.ProductCode,
		Notes:       raw.Notes,
	}

	if err := p.validate.Struct(raw); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				line.Errors = append(line.Errors, rowErrorFor(row, fe))
			}
		} else {
			line.Errors = append(line.Errors, NewRowError(row.Number, "", ErrCodeImportInvalidType, err.Error()))
		}
	}

	if qty, err := decimal.NewFromString(raw.Quantity); err == nil {
		line.Quantity = qty
		if !qty.IsPositive() {
			line.Errors = append(line.Errors, NewRowErrorWithValue(row.Number, ColumnQuantity,
				ErrCodeImportInvalidRange, "quantity must be greater than zero", raw.Quantity))
		}
	}
	if raw.UnitPrice != "" {
		if price, err := decimal.NewFromString(raw.UnitPrice); err == nil {
			if price.IsNegative() {
				line.Errors = append(line.Errors, NewRowErrorWithValue(row.Number, ColumnUnitPrice,
					ErrCodeImportInvalidRange, "unit price cannot be negative", raw.UnitPrice))
			} else {
				line.UnitPrice = &price
			}
		}
	}
	return line
}

func rowErrorFor(row *Row, fe validator.FieldError) RowError {
	column := fieldColumn(fe.Field())
	value := fmt.Sprint(fe.Value())
	switch fe.Tag() {
	case "required":
		return NewRowError(row.Number, column, ErrCodeImportRequiredField, column+" is required")
	case "max":
		return NewRowErrorWithValue(row.Number, column, ErrCodeImportInvalidLength,
			fmt.Sprintf("%s must be at most %s characters", column, fe.Param()), value)
	case "decimal_str":
		return NewRowErrorWithValue(row.Number, column, ErrCodeImportInvalidType,
			column+" must be a number", value)
	case "product_code":
		return NewRowErrorWithValue(row.Number, column, ErrCodeImportPatternMismatch,
			"product code contains invalid characters", value)
	}
	return NewRowErrorWithValue(row.Number, column, ErrCodeImportInvalidType, fe.Error(), value)
}

func fieldColumn(field string) string {
	switch field {
	case "ProductCode":
		return ColumnProductCode
	case "Quantity":
		return ColumnQuantity
	case "UnitPrice":
		return ColumnUnitPrice
	case "Notes":
		return ColumnNotes
	}
	return strings.ToLower(field)
}

// normalizeNumber accepts a comma decimal separator and strips spaces.
func normalizeNumber(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}

func validateProductCode(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.', r == '/':
		default:
			return false
		}
	}
	return true
}

func validateDecimalString(fl validator.FieldLevel) bool {
	_, err := decimal.NewFromString(fl.Field().String())
	return err == nil
}
