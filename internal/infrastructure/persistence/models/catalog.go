package models

import (
	"github.com/erp/procurement/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	TenantAggregateModel
	Code          string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name          string                `gorm:"type:varchar(200);not null"`
	Unit          string                `gorm:"type:varchar(20);not null"`
	StandardPrice decimal.Decimal       `gorm:"type:numeric;not null;default:0"`
	TaxCode       string                `gorm:"type:varchar(20)"`
	Status        catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Unit:                m.Unit,
		StandardPrice:       m.StandardPrice,
		TaxCode:             m.TaxCode,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Unit = p.Unit
	m.StandardPrice = p.StandardPrice
	m.TaxCode = p.TaxCode
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// TaxCodeModel is a row of the tax code registry
type TaxCodeModel struct {
	TenantModel
	Code        string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_tax_code_tenant_code,priority:2"`
	Description string          `gorm:"type:varchar(200)"`
	RatePercent decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (TaxCodeModel) TableName() string {
	return "tax_codes"
}

// ToDomain converts the persistence model to a domain TaxCode.
func (m *TaxCodeModel) ToDomain() *catalog.TaxCode {
	return &catalog.TaxCode{
		TenantEntity: m.ToDomainTenantEntity(),
		Code:         m.Code,
		Description:  m.Description,
		RatePercent:  m.RatePercent,
		Active:       m.Active,
	}
}

// TaxCodeModelFromDomain creates a new persistence model from a domain TaxCode.
func TaxCodeModelFromDomain(tc *catalog.TaxCode) *TaxCodeModel {
	m := &TaxCodeModel{
		Code:        tc.Code,
		Description: tc.Description,
		RatePercent: tc.RatePercent,
		Active:      tc.Active,
	}
	m.FromDomainTenantEntity(tc.TenantEntity)
	return m
}
