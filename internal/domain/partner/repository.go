package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SupplierRepository defines the supplier lookups of the procurement engine.
// Lookups return shared.ErrNotFound when no row matches.
type SupplierRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
}

// AssignmentRepository resolves which supplier a product is bought from
type AssignmentRepository interface {
	// FindByProduct returns the assignment of a product, or shared.ErrNotFound
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) (*ProductAssignment, error)
	Save(ctx context.Context, assignment *ProductAssignment) error
}

// PriceListRepository gives access to supplier price lists
type PriceListRepository interface {
	// FindPriceAt returns the entry valid at t with the latest ValidFrom,
	// or nil without error when the supplier has no applicable price
	FindPriceAt(ctx context.Context, tenantID, supplierID, productID uuid.UUID, t time.Time) (*SupplierPrice, error)
	Save(ctx context.Context, price *SupplierPrice) error
}
