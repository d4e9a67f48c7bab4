package poimport

import (
	"errors"
	"fmt"
	"strings"
)

// Import error codes
const (
	ErrCodeImportInvalidFile       = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportEmptyFile         = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportFileTooLarge      = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeImportTooManyRows       = "ERR_IMPORT_TOO_MANY_ROWS"
	ErrCodeImportInvalidEncoding   = "ERR_IMPORT_INVALID_ENCODING"
	ErrCodeImportMissingHeader     = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportMissingColumns    = "ERR_IMPORT_MISSING_COLUMNS"
	ErrCodeImportRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType       = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidLength     = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeImportInvalidRange      = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeImportPatternMismatch   = "ERR_IMPORT_PATTERN_MISMATCH"
	ErrCodeImportReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
	ErrCodeImportUnsupportedFormat = "ERR_IMPORT_UNSUPPORTED_FORMAT"
)

// Common import errors
var (
	ErrEmptyFile         = errors.New("import file is empty")
	ErrInvalidEncoding   = errors.New("import file is neither UTF-8 nor GB18030")
	ErrMissingHeader     = errors.New("import file missing header row")
	ErrNoDataRows        = errors.New("import file contains no data rows")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrTooManyRows       = errors.New("file exceeds maximum allowed rows")
	ErrUnsupportedFormat = errors.New("unsupported import format")
	ErrMissingColumns    = errors.New("import file missing required columns")
)

// FileError is a file-level failure with a stable code
type FileError struct {
	Code    string
	Message string
	Err     error
}

func (e *FileError) Error() string {
	return e.Message
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func newFileError(code string, err error, format string, args ...any) *FileError {
	return &FileError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// RowError represents an error in a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// NewRowErrorWithValue creates a new RowError with the offending value
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message, Value: value}
}

// ErrorCollection keeps up to maxErrors row errors and counts the rest
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the total number of errors including those not collected
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if some errors were not collected due to the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// String returns a string representation of all errors
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s) found", ec.totalCount)
	if ec.IsTruncated() {
		fmt.Fprintf(&sb, " (showing first %d)", ec.maxErrors)
	}
	sb.WriteString(":\n")
	for _, err := range ec.errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}
