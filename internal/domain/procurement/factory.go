package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderFactory persists partition groups as draft orders.
// It must run inside the caller's transaction.
type OrderFactory struct {
	numbers OrderNumberAllocator
	orders  PurchaseOrderRepository
	history StatusHistoryRepository
	now     func() time.Time
}

// NewOrderFactory creates a factory over transaction-bound repositories
func NewOrderFactory(numbers OrderNumberAllocator, orders PurchaseOrderRepository, history StatusHistoryRepository) *OrderFactory {
	return &OrderFactory{
		numbers: numbers,
		orders:  orders,
		history: history,
		now:     time.Now,
	}
}

// WithNow returns a copy of the factory using now for the number year
func (f *OrderFactory) WithNow(now func() time.Time) *OrderFactory {
	cp := *f
	cp.now = now
	return &cp
}

// CreateOrders persists one order per group in group order.
// Any failure is returned as-is so the surrounding transaction rolls back.
func (f *OrderFactory) CreateOrders(ctx context.Context, tenantID uuid.UUID, groups []OrderGroup, warehouseID, requesterID uuid.UUID) ([]*PurchaseOrder, error) {
	if warehouseID == uuid.Nil {
		return nil, ErrWarehouseRequired
	}
	if requesterID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	year := f.now().Year()
	orders := make([]*PurchaseOrder, 0, len(groups))
	for _, group := range groups {
		seq, err := f.numbers.Next(ctx, tenantID, year)
		if err != nil {
			return nil, err
		}
		order, err := NewPurchaseOrder(tenantID, FormatOrderNumber(year, seq), warehouseID, requesterID, group)
		if err != nil {
			return nil, err
		}
		if err := f.orders.Create(ctx, order); err != nil {
			return nil, err
		}
		if f.history != nil {
			if err := f.history.Append(ctx, NewCreationHistoryEntry(order)); err != nil {
				return nil, fmt.Errorf("append creation history for %s: %w", order.OrderNumber, err)
			}
		}
		orders = append(orders, order)
	}
	return orders, nil
}
