package partner

import (
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductAssignment links a product to the single supplier it is bought from
type ProductAssignment struct {
	shared.TenantEntity
	ProductID  uuid.UUID
	SupplierID uuid.UUID
}

// NewProductAssignment creates an assignment of productID to supplierID
func NewProductAssignment(tenantID, productID, supplierID uuid.UUID) (*ProductAssignment, error) {
	if productID == uuid.Nil || supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNMENT", "Product and supplier are required")
	}
	return &ProductAssignment{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ProductID:    productID,
		SupplierID:   supplierID,
	}, nil
}

// SupplierPrice is a price list entry of a supplier for one product.
// ValidTo is exclusive; nil means open ended.
type SupplierPrice struct {
	shared.TenantEntity
	SupplierID uuid.UUID
	ProductID  uuid.UUID
	UnitPrice  decimal.Decimal
	ValidFrom  time.Time
	ValidTo    *time.Time
}

// NewSupplierPrice creates a price list entry valid from validFrom
func NewSupplierPrice(tenantID, supplierID, productID uuid.UUID, price decimal.Decimal, validFrom time.Time, validTo *time.Time) (*SupplierPrice, error) {
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Supplier price cannot be negative")
	}
	if validTo != nil && !validTo.After(validFrom) {
		return nil, shared.NewDomainError("INVALID_VALIDITY", "Price validity end must be after its start")
	}
	return &SupplierPrice{
		TenantEntity: shared.NewTenantEntity(tenantID),
		SupplierID:   supplierID,
		ProductID:    productID,
		UnitPrice:    price,
		ValidFrom:    validFrom,
		ValidTo:      validTo,
	}, nil
}

// IsValidAt reports whether the entry applies at instant t
func (p *SupplierPrice) IsValidAt(t time.Time) bool {
	if t.Before(p.ValidFrom) {
		return false
	}
	return p.ValidTo == nil || t.Before(*p.ValidTo)
}

// SelectPriceAt returns the entry valid at t with the latest ValidFrom, or nil
func SelectPriceAt(prices []SupplierPrice, t time.Time) *SupplierPrice {
	var best *SupplierPrice
	for i := range prices {
		p := &prices[i]
		if !p.IsValidAt(t) {
			continue
		}
		if best == nil || p.ValidFrom.After(best.ValidFrom) {
			best = p
		}
	}
	return best
}
