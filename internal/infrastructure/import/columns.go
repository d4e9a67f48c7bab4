package poimport

import "strings"

// Canonical column names
const (
	ColumnProductCode = "product_code"
	ColumnQuantity    = "quantity"
	ColumnUnitPrice   = "unit_price"
	ColumnNotes       = "notes"
)

// columnAliases lists accepted header spellings per canonical column.
// Legacy exports use Polish and Chinese headers.
var columnAliases = map[string][]string{
	ColumnProductCode: {"product_code", "product code", "productcode", "code", "sku", "item", "kod", "kod produktu", "产品编码", "商品编码"},
	ColumnQuantity:    {"quantity", "qty", "ilosc", "ilość", "数量"},
	ColumnUnitPrice:   {"unit_price", "unit price", "price", "cena", "单价"},
	ColumnNotes:       {"notes", "note", "remark", "remarks", "comment", "uwagi", "备注"},
}

var headerAliases = buildHeaderAliases()

func buildHeaderAliases() map[string]string {
	m := make(map[string]string)
	for column, aliases := range columnAliases {
		for _, a := range aliases {
			m[a] = column
		}
	}
	return m
}

// CanonicalColumn returns the canonical column for a header cell, or "" if
// the header is not recognized
func CanonicalColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.Join(strings.Fields(h), " ")
	if c, ok := headerAliases[h]; ok {
		return c
	}
	if c, ok := headerAliases[strings.ReplaceAll(h, "-", "_")]; ok {
		return c
	}
	return ""
}
