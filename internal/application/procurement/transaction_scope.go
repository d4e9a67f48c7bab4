package procurementapp

import (
	"context"

	"github.com/erp/procurement/internal/domain/procurement"
)

// TransactionScope provides transactional access to purchase order repositories.
// All repository operations inside Execute share one database transaction and
// are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a transaction. An error from fn rolls back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to the current transaction.
//
//   - OrderRepo: purchase order headers and lines, including the status CAS.
//   - NumberAllocator: the per-(tenant, year) order sequence. Allocating inside
//     the transaction means a rollback releases the number.
//   - HistoryRepo: append-only status history.
type TransactionalRepositories interface {
	OrderRepo() procurement.PurchaseOrderRepository
	NumberAllocator() procurement.OrderNumberAllocator
	HistoryRepo() procurement.StatusHistoryRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used by tests and by in-memory wiring.
type NoOpTransactionScope struct {
	orderRepo   procurement.PurchaseOrderRepository
	allocator   procurement.OrderNumberAllocator
	historyRepo procurement.StatusHistoryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo procurement.PurchaseOrderRepository,
	allocator procurement.OrderNumberAllocator,
	historyRepo procurement.StatusHistoryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		allocator:   allocator,
		historyRepo: historyRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the purchase order repository.
func (s *NoOpTransactionScope) OrderRepo() procurement.PurchaseOrderRepository {
	return s.orderRepo
}

// NumberAllocator returns the order number allocator.
func (s *NoOpTransactionScope) NumberAllocator() procurement.OrderNumberAllocator {
	return s.allocator
}

// HistoryRepo returns the status history repository.
func (s *NoOpTransactionScope) HistoryRepo() procurement.StatusHistoryRepository {
	return s.historyRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
