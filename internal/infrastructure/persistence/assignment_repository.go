package persistence

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssignmentRepository implements partner.AssignmentRepository using GORM
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// FindByProduct returns the supplier assignment of a product
func (r *GormAssignmentRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) (*partner.ProductAssignment, error) {
	var model models.ProductAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save assigns the product to the supplier, replacing any previous assignment
func (r *GormAssignmentRepository) Save(ctx context.Context, assignment *partner.ProductAssignment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"supplier_id", "updated_at"}),
		}).
		Create(models.ProductAssignmentModelFromDomain(assignment)).Error
}

var _ partner.AssignmentRepository = (*GormAssignmentRepository)(nil)
