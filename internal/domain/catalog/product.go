package catalog

import (
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// IsValid checks if the status is a known value
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued:
		return true
	}
	return false
}

// Product represents a purchasable item in the catalog.
// StandardPrice is the fallback purchase price used when the assigned
// supplier has no price list entry for the product.
type Product struct {
	shared.TenantAggregateRoot
	Code          string
	Name          string
	Unit          string
	StandardPrice decimal.Decimal
	TaxCode       string
	Status        ProductStatus
}

// NewProduct creates a new active product
func NewProduct(tenantID uuid.UUID, code, name, unit string, standardPrice decimal.Decimal) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}
	if standardPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Standard price cannot be negative")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                NormalizeCode(code),
		Name:                name,
		Unit:                unit,
		StandardPrice:       standardPrice,
		Status:              ProductStatusActive,
	}, nil
}

// NormalizeCode returns the canonical form used for code lookups
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsActive returns true if the product can be ordered
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// SetTaxCode assigns the product-level tax code; it takes precedence over
// the supplier's tax code when a line's rate is resolved
func (p *Product) SetTaxCode(code string) {
	p.TaxCode = strings.ToUpper(strings.TrimSpace(code))
	p.Touch()
	p.IncrementVersion()
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.Status = ProductStatusInactive
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Discontinue marks the product as discontinued
func (p *Product) Discontinue() {
	p.Status = ProductStatusDiscontinued
	p.Touch()
	p.IncrementVersion()
}

func validateProductCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	if unit == "" {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	return nil
}
