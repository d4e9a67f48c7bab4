package poimport

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("orders.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = DetectFormat("orders.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = DetectFormat("orders.pdf")
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrCodeImportUnsupportedFormat, fe.Code)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestCanonicalColumn(t *testing.T) {
	tests := map[string]string{
		"Product Code": ColumnProductCode,
		" SKU ":        ColumnProductCode,
		"qty":          ColumnQuantity,
		"Ilość":        ColumnQuantity,
		"unit-price":   ColumnUnitPrice,
		"Uwagi":        ColumnNotes,
		"colour":       "",
	}
	for header, want := range tests {
		assert.Equal(t, want, CanonicalColumn(header), header)
	}
	assert.Equal(t, ColumnQuantity, CanonicalColumn("数量"))
}

func TestParseCSV(t *testing.T) {
	data := []byte("product_code,quantity,unit_price,notes\np-001,5,12.50,urgent\n,,,\nP-002,\"2,5\",,\n")

	result, err := NewLineParser().Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]
	assert.Equal(t, 2, first.RowNumber)
	assert.Equal(t, "P-001", first.ProductCode)
	assert.Equal(t, "5", first.Quantity.String())
	require.NotNil(t, first.UnitPrice)
	assert.Equal(t, "12.5", first.UnitPrice.String())
	assert.Equal(t, "urgent", first.Notes)
	assert.True(t, first.Valid())

	second := result.Rows[1]
	assert.Equal(t, 4, second.RowNumber, "blank rows keep sheet numbering")
	assert.Equal(t, "2.5", second.Quantity.String())
	assert.Nil(t, second.UnitPrice)
	assert.False(t, result.Errors.HasErrors())
}

func TestParseCSV_BOMAndSemicolon(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Kod;Ilosc\nP-001;3\n")...)

	result, err := NewLineParser().Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "P-001", result.Rows[0].ProductCode)
	assert.Equal(t, "3", result.Rows[0].Quantity.String())
}

func TestParseCSV_GB18030(t *testing.T) {
	utf8Text := "产品编码,数量,备注\nP-001,4,加急\n"
	encoded, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte(utf8Text))
	require.NoError(t, err)

	result, err := NewLineParser().Parse(encoded, FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "加急", result.Rows[0].Notes)
	assert.Equal(t, "4", result.Rows[0].Quantity.String())
}

func TestParseCSV_RowErrors(t *testing.T) {
	data := []byte("product_code,quantity,unit_price\n,5,\nP-002,abc,\nP-003,0,\nP-004,1,-3\nP 005,1,\n")

	result, err := NewLineParser().Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Rows, 5)
	assert.Equal(t, 5, result.ErrorRowCount())
	assert.Empty(t, result.ValidRows())

	codes := make([]string, 0, 5)
	for _, row := range result.Rows {
		require.Len(t, row.Errors, 1, "row %d", row.RowNumber)
		codes = append(codes, row.Errors[0].Code)
	}
	assert.Equal(t, []string{
		ErrCodeImportRequiredField,
		ErrCodeImportInvalidType,
		ErrCodeImportInvalidRange,
		ErrCodeImportInvalidRange,
		ErrCodeImportPatternMismatch,
	}, codes)
	assert.Equal(t, 3, result.Rows[1].Errors[0].Row)
	assert.Equal(t, ColumnQuantity, result.Rows[1].Errors[0].Column)
}

func TestParse_FileErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		opts []LineParserOption
		code string
	}{
		{"empty", nil, nil, ErrCodeImportEmptyFile},
		{"no header", []byte("foo,bar\n1,2\n"), nil, ErrCodeImportMissingHeader},
		{"missing quantity", []byte("product_code,notes\nP-1,x\n"), nil, ErrCodeImportMissingColumns},
		{"header only", []byte("product_code,quantity\n"), nil, ErrCodeImportEmptyFile},
		{"too many rows", []byte("product_code,quantity\nA,1\nB,1\nC,1\n"), []LineParserOption{WithMaxRows(2)}, ErrCodeImportTooManyRows},
		{"too large", []byte("product_code,quantity\nA,1\n"), []LineParserOption{WithMaxBytes(10)}, ErrCodeImportFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLineParser(tt.opts...).Parse(tt.data, FormatCSV)
			var fe *FileError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.code, fe.Code)
		})
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Product Code", "Qty", "Price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"p-010", 7, 3.25}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"P-011", "1.5", ""}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	result, err := NewLineParser().Parse(buf.Bytes(), FormatXLSX)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "P-010", result.Rows[0].ProductCode)
	assert.Equal(t, "7", result.Rows[0].Quantity.String())
	require.NotNil(t, result.Rows[0].UnitPrice)
	assert.Equal(t, "3.25", result.Rows[0].UnitPrice.String())
	assert.Equal(t, 3, result.Rows[1].RowNumber)
	assert.Nil(t, result.Rows[1].UnitPrice)
}

func TestErrorCollectionTruncation(t *testing.T) {
	ec := NewErrorCollection(2)
	for i := 0; i < 3; i++ {
		ec.Add(NewRowError(i+2, ColumnQuantity, ErrCodeImportRequiredField, "quantity is required"))
	}
	assert.Equal(t, 3, ec.TotalCount())
	assert.Len(t, ec.Errors(), 2)
	assert.True(t, ec.IsTruncated())
	assert.Contains(t, ec.String(), "showing first 2")
}
