package poimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads quick-entry CSV files
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithLazyQuotes enables lazy quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// NewCSVParser creates a new CSV parser
func NewCSVParser(opts ...ParserOption) *CSVParser {
	p := &CSVParser{
		delimiter:  ',',
		lazyQuotes: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes data into a table. UTF-8 (with or without BOM) is read
// as-is; anything else is decoded as GB18030, which covers GBK exports.
// A semicolon delimiter is picked up automatically when the header has no commas.
func (p *CSVParser) Parse(data []byte) (*Table, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, newFileError(ErrCodeImportEmptyFile, ErrEmptyFile, "import file is empty")
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = p.delimiterFor(text)
	r.LazyQuotes = p.lazyQuotes
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newFileError(ErrCodeImportInvalidFile, err, "failed to parse CSV: %v", err)
		}
		records = append(records, rec)
	}
	return newTable(records)
}

func (p *CSVParser) delimiterFor(text []byte) rune {
	if p.delimiter != ',' {
		return p.delimiter
	}
	header := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}
	if !bytes.ContainsRune(header, ',') && bytes.ContainsRune(header, ';') {
		return ';'
	}
	return ','
}

func decodeText(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, newFileError(ErrCodeImportEmptyFile, ErrEmptyFile, "import file is empty")
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), data)
	if err != nil {
		return nil, newFileError(ErrCodeImportInvalidEncoding, errors.Join(ErrInvalidEncoding, err),
			"file encoding is not supported: %v", err)
	}
	if !utf8.Valid(decoded) {
		return nil, newFileError(ErrCodeImportInvalidEncoding, ErrInvalidEncoding, "file encoding is not supported")
	}
	return decoded, nil
}
