package persistence

import (
	"context"

	procurementapp "github.com/erp/procurement/internal/application/procurement"
	"github.com/erp/procurement/internal/domain/procurement"
	"gorm.io/gorm"
)

// GormTransactionScope implements procurementapp.TransactionScope using GORM
// transactions. Order writes, number allocation and history rows commit or
// roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos procurementapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the purchase order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() procurement.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// NumberAllocator returns the order number allocator scoped to the current transaction.
func (r *gormTransactionalRepositories) NumberAllocator() procurement.OrderNumberAllocator {
	return NewGormOrderNumberAllocator(r.tx)
}

// HistoryRepo returns the status history repository scoped to the current transaction.
func (r *gormTransactionalRepositories) HistoryRepo() procurement.StatusHistoryRepository {
	return NewGormStatusHistoryRepository(r.tx)
}

var _ procurementapp.TransactionScope = (*GormTransactionScope)(nil)

var _ procurementapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
