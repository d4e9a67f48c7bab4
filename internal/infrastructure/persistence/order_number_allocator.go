package persistence

import (
	"context"
	"fmt"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// nextOrderNumberSQL bumps the counter in one statement so concurrent
// allocations for the same (tenant, year) serialize on the row lock.
const nextOrderNumberSQL = `INSERT INTO purchase_order_sequences (tenant_id, year, last_value)
VALUES (?, ?, 1)
ON CONFLICT (tenant_id, year) DO UPDATE SET last_value = purchase_order_sequences.last_value + 1
RETURNING last_value`

// GormOrderNumberAllocator implements procurement.OrderNumberAllocator on the
// purchase_order_sequences table
type GormOrderNumberAllocator struct {
	db *gorm.DB
}

// NewGormOrderNumberAllocator creates a new GormOrderNumberAllocator
func NewGormOrderNumberAllocator(db *gorm.DB) *GormOrderNumberAllocator {
	return &GormOrderNumberAllocator{db: db}
}

// Next returns the next sequence value for the tenant and year, starting at 1
func (a *GormOrderNumberAllocator) Next(ctx context.Context, tenantID uuid.UUID, year int) (int64, error) {
	var next int64
	if err := a.db.WithContext(ctx).Raw(nextOrderNumberSQL, tenantID, year).Scan(&next).Error; err != nil {
		return 0, fmt.Errorf("allocate order number for %d: %w", year, err)
	}
	if next <= 0 {
		return 0, fmt.Errorf("allocate order number for %d: sequence returned %d", year, next)
	}
	return next, nil
}

var _ procurement.OrderNumberAllocator = (*GormOrderNumberAllocator)(nil)
