// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: base persistence models (BaseModel, TenantModel, TenantAggregateModel)
//   - catalog.go: products and the tax code registry
//   - partner.go: suppliers, product assignments and supplier price lists
//   - procurement.go: purchase orders, order lines, status history and the
//     per-(tenant, year) order number sequence
package models
