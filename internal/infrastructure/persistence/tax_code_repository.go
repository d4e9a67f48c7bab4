package persistence

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/catalog"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaxCodeRepository implements catalog.TaxCodeRepository using GORM
type GormTaxCodeRepository struct {
	db *gorm.DB
}

// NewGormTaxCodeRepository creates a new GormTaxCodeRepository
func NewGormTaxCodeRepository(db *gorm.DB) *GormTaxCodeRepository {
	return &GormTaxCodeRepository{db: db}
}

// FindByCode finds a tax code within a tenant
func (r *GormTaxCodeRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.TaxCode, error) {
	var model models.TaxCodeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a tax code
func (r *GormTaxCodeRepository) Save(ctx context.Context, taxCode *catalog.TaxCode) error {
	return r.db.WithContext(ctx).Save(models.TaxCodeModelFromDomain(taxCode)).Error
}

var _ catalog.TaxCodeRepository = (*GormTaxCodeRepository)(nil)
