package persistence

import (
	"context"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStatusHistoryRepository implements procurement.StatusHistoryRepository using GORM
type GormStatusHistoryRepository struct {
	db *gorm.DB
}

// NewGormStatusHistoryRepository creates a new GormStatusHistoryRepository
func NewGormStatusHistoryRepository(db *gorm.DB) *GormStatusHistoryRepository {
	return &GormStatusHistoryRepository{db: db}
}

// Append inserts one history row. Rows are never updated.
func (r *GormStatusHistoryRepository) Append(ctx context.Context, entry *procurement.StatusHistoryEntry) error {
	return r.db.WithContext(ctx).Create(models.StatusHistoryModelFromDomain(entry)).Error
}

// ListByOrder returns the history of an order, newest first
func (r *GormStatusHistoryRepository) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID, filter shared.Filter) ([]procurement.StatusHistoryEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StatusHistoryModel{}).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Order("occurred_at DESC").Order("id DESC")
	if filter.PageSize > 0 {
		page = page.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	var rows []models.StatusHistoryModel
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]procurement.StatusHistoryEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, total, nil
}

var _ procurement.StatusHistoryRepository = (*GormStatusHistoryRepository)(nil)
