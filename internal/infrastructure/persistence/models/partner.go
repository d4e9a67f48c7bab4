package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierModel is the persistence model for the Supplier domain entity.
// An empty currency is stored as NULL.
type SupplierModel struct {
	TenantAggregateModel
	Code     string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_tenant_code,priority:2"`
	Name     string                 `gorm:"type:varchar(200);not null"`
	Status   partner.SupplierStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Currency *string                `gorm:"type:char(3)"`
	TaxCode  string                 `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	s := &partner.Supplier{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Status:              m.Status,
		TaxCode:             m.TaxCode,
	}
	if m.Currency != nil {
		s.Currency = valueobject.Currency(*m.Currency)
	}
	return s
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.Code = s.Code
	m.Name = s.Name
	m.Status = s.Status
	m.TaxCode = s.TaxCode
	m.Currency = nil
	if s.HasCurrency() {
		c := s.Currency.String()
		m.Currency = &c
	}
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}

// ProductAssignmentModel links a product to its single supplier.
// The unique product index keeps one assignment per product.
type ProductAssignmentModel struct {
	TenantModel
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_tenant_product,priority:2"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (ProductAssignmentModel) TableName() string {
	return "product_suppliers"
}

// ToDomain converts the persistence model to a domain ProductAssignment.
func (m *ProductAssignmentModel) ToDomain() *partner.ProductAssignment {
	return &partner.ProductAssignment{
		TenantEntity: m.ToDomainTenantEntity(),
		ProductID:    m.ProductID,
		SupplierID:   m.SupplierID,
	}
}

// ProductAssignmentModelFromDomain creates a new persistence model from a domain ProductAssignment.
func ProductAssignmentModelFromDomain(a *partner.ProductAssignment) *ProductAssignmentModel {
	m := &ProductAssignmentModel{ProductID: a.ProductID, SupplierID: a.SupplierID}
	m.FromDomainTenantEntity(a.TenantEntity)
	return m
}

// SupplierPriceModel is one supplier price list entry
type SupplierPriceModel struct {
	TenantModel
	SupplierID uuid.UUID       `gorm:"type:uuid;not null;index:idx_supplier_price_lookup,priority:1"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_supplier_price_lookup,priority:2"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric;not null"`
	ValidFrom  time.Time       `gorm:"not null;index:idx_supplier_price_lookup,priority:3"`
	ValidTo    *time.Time
}

// TableName returns the table name for GORM
func (SupplierPriceModel) TableName() string {
	return "supplier_prices"
}

// ToDomain converts the persistence model to a domain SupplierPrice.
func (m *SupplierPriceModel) ToDomain() *partner.SupplierPrice {
	return &partner.SupplierPrice{
		TenantEntity: m.ToDomainTenantEntity(),
		SupplierID:   m.SupplierID,
		ProductID:    m.ProductID,
		UnitPrice:    m.UnitPrice,
		ValidFrom:    m.ValidFrom,
		ValidTo:      m.ValidTo,
	}
}

// SupplierPriceModelFromDomain creates a new persistence model from a domain SupplierPrice.
func SupplierPriceModelFromDomain(p *partner.SupplierPrice) *SupplierPriceModel {
	m := &SupplierPriceModel{
		SupplierID: p.SupplierID,
		ProductID:  p.ProductID,
		UnitPrice:  p.UnitPrice,
		ValidFrom:  p.ValidFrom,
		ValidTo:    p.ValidTo,
	}
	m.FromDomainTenantEntity(p.TenantEntity)
	return m
}
