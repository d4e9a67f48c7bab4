package procurement

import (
	"context"
	"fmt"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	Status      OrderStatus
	SupplierID  *uuid.UUID
	WarehouseID *uuid.UUID
	Currency    string
}

// PurchaseOrderRepository persists purchase orders
type PurchaseOrderRepository interface {
	// Create inserts header and lines. A duplicate order number fails with
	// an OrderNumberAllocationConflict error.
	Create(ctx context.Context, order *PurchaseOrder) error

	// FindByID loads an order with its lines, or fails with OrderNotFound
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindAll lists orders without lines and returns the total count
	FindAll(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) ([]PurchaseOrder, int64, error)

	// ApplyTransition persists order.LastTransition() with a compare-and-swap
	// on (id, from status, from version). A lost race fails with IllegalTransition.
	ApplyTransition(ctx context.Context, order *PurchaseOrder) error

	// Delete removes a draft order and its lines
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// OrderNumberAllocator hands out the per-(tenant, year) order sequence.
// Allocation participates in the caller's transaction so a rollback
// releases the number.
type OrderNumberAllocator interface {
	Next(ctx context.Context, tenantID uuid.UUID, year int) (int64, error)
}

// StatusHistoryRepository persists the audit trail
type StatusHistoryRepository interface {
	Append(ctx context.Context, entry *StatusHistoryEntry) error
	ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID, filter shared.Filter) ([]StatusHistoryEntry, int64, error)
}

// FormatOrderNumber renders PO-<year>-<sequence>
func FormatOrderNumber(year int, seq int64) string {
	return fmt.Sprintf("PO-%d-%05d", year, seq)
}
