package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPriceListRepository implements partner.PriceListRepository using GORM
type GormPriceListRepository struct {
	db *gorm.DB
}

// NewGormPriceListRepository creates a new GormPriceListRepository
func NewGormPriceListRepository(db *gorm.DB) *GormPriceListRepository {
	return &GormPriceListRepository{db: db}
}

// FindPriceAt returns the price valid at t. When several entries overlap the
// one with the latest valid_from wins. No entry is not an error.
func (r *GormPriceListRepository) FindPriceAt(ctx context.Context, tenantID, supplierID, productID uuid.UUID, t time.Time) (*partner.SupplierPrice, error) {
	var model models.SupplierPriceModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND supplier_id = ? AND product_id = ?", tenantID, supplierID, productID).
		Where("valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)", t, t).
		Order("valid_from DESC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a price list entry
func (r *GormPriceListRepository) Save(ctx context.Context, price *partner.SupplierPrice) error {
	return r.db.WithContext(ctx).Save(models.SupplierPriceModelFromDomain(price)).Error
}

var _ partner.PriceListRepository = (*GormPriceListRepository)(nil)
