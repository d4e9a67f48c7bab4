package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the catalog lookups the procurement engine needs.
// Lookups return shared.ErrNotFound when no row matches.
type ProductRepository interface {
	// FindByCode finds a product by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)

	// FindByCodes finds multiple products by their codes; unknown codes are skipped
	FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}

// TaxCodeRepository is the tax code registry
type TaxCodeRepository interface {
	// FindByCode finds a tax code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*TaxCode, error)

	// Save creates or updates a tax code
	Save(ctx context.Context, taxCode *TaxCode) error
}
