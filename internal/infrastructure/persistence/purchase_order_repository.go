package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const lineInsertBatchSize = 100

// GormPurchaseOrderRepository implements procurement.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// Create inserts the order header followed by its lines. Callers run it
// inside a transaction so a failed line insert leaves no header behind.
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *procurement.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(order)
	db := r.db.WithContext(ctx)

	if err := db.Omit("Lines").Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return procurement.NewOrderNumberConflictError(order.OrderNumber)
		}
		return fmt.Errorf("insert purchase order %s: %w", order.OrderNumber, err)
	}
	if len(model.Lines) == 0 {
		return nil
	}
	if err := db.CreateInBatches(model.Lines, lineInsertBatchSize).Error; err != nil {
		return fmt.Errorf("insert lines of purchase order %s: %w", order.OrderNumber, err)
	}
	return nil
}

// FindByID loads an order with its lines in line number order
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, procurement.NewOrderNotFoundError(id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists order headers for a tenant. Lines are not loaded.
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter procurement.OrderFilter) ([]procurement.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orderModels []models.PurchaseOrderModel
	if err := r.applyPagination(query, filter).Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]procurement.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, total, nil
}

// ApplyTransition writes the lifecycle columns of order guarded by the
// status and version it was loaded with. Zero affected rows means another
// writer got there first.
func (r *GormPurchaseOrderRepository) ApplyTransition(ctx context.Context, order *procurement.PurchaseOrder) error {
	t := order.LastTransition()
	if t == nil {
		return fmt.Errorf("purchase order %s has no pending transition", order.ID)
	}

	model := models.PurchaseOrderModelFromDomain(order)
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("id = ? AND tenant_id = ? AND status = ? AND version = ?", order.ID, order.TenantID, t.FromStatus, t.FromVersion).
		Updates(model.TransitionColumns())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return procurement.NewTransitionConflictError(order.ID, t.FromStatus, t.Action)
	}
	return nil
}

// Delete removes an order and its lines. Lines are matched through their
// header so another tenant's order is never touched.
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	owned := db.Model(&models.PurchaseOrderModel{}).Select("id").Where("tenant_id = ? AND id = ?", tenantID, id)
	if err := db.Where("order_id IN (?)", owned).Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
		return err
	}
	result := db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.PurchaseOrderModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return procurement.NewOrderNotFoundError(id)
	}
	return nil
}

// applyFilter applies the listing filters without pagination or ordering
func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter procurement.OrderFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.Currency != "" {
		query = query.Where("currency = ?", strings.ToUpper(filter.Currency))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}
	return query
}

func (r *GormPurchaseOrderRepository) applyPagination(query *gorm.DB, filter procurement.OrderFilter) *gorm.DB {
	sortField := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	if sortField != "order_number" {
		query = query.Order("order_number DESC")
	}
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
