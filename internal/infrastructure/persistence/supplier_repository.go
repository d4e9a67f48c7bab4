package persistence

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by ID within a tenant
func (r *GormSupplierRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	return r.findOne(ctx, "tenant_id = ? AND id = ?", tenantID, id)
}

// FindByCode finds a supplier by code within a tenant
func (r *GormSupplierRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*partner.Supplier, error) {
	return r.findOne(ctx, "tenant_id = ? AND code = ?", tenantID, code)
}

func (r *GormSupplierRepository) findOne(ctx context.Context, where string, args ...any) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).Where(where, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return r.db.WithContext(ctx).Save(models.SupplierModelFromDomain(supplier)).Error
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
