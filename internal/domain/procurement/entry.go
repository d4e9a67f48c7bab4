package procurement

import (
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity accepted for one entry
var MaxQuantity = decimal.RequireFromString("999999.99")

// ProductEntry is one raw quick-entry line
type ProductEntry struct {
	ProductCode string
	Quantity    decimal.Decimal
	// UnitPrice overrides the price list when set
	UnitPrice *decimal.Decimal
	Notes     string
}

// LineCandidate is an entry resolved against catalog and supplier directory
type LineCandidate struct {
	ProductID      uuid.UUID
	ProductCode    string
	ProductName    string
	SupplierID     uuid.UUID
	SupplierName   string
	Currency       valueobject.Currency
	UOM            string
	UnitPrice      decimal.Decimal
	TaxRatePercent decimal.Decimal
	Quantity       decimal.Decimal
	Notes          string
}

// PartitionKey identifies the order a line belongs to
type PartitionKey struct {
	SupplierID uuid.UUID
	Currency   valueobject.Currency
}

// Key returns the (supplier, currency) pair of the candidate
func (c LineCandidate) Key() PartitionKey {
	return PartitionKey{SupplierID: c.SupplierID, Currency: c.Currency}
}

// AggregatedLine is a candidate whose quantity sums all candidates of the same product
type AggregatedLine struct {
	LineCandidate
	// SourceCount is the number of entries merged into this line
	SourceCount int
}

// OrderGroup holds the lines that become one purchase order
type OrderGroup struct {
	SupplierID   uuid.UUID
	SupplierName string
	Currency     valueobject.Currency
	Lines        []AggregatedLine
}
