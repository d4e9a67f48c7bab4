package catalog

import (
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TaxCode is an entry of the tax code registry (e.g. "VAT23" -> 23%)
type TaxCode struct {
	shared.TenantEntity
	Code        string
	Description string
	RatePercent decimal.Decimal
	Active      bool
}

// NewTaxCode creates an active tax code with a rate between 0 and 100 percent
func NewTaxCode(tenantID uuid.UUID, code, description string, rate decimal.Decimal) (*TaxCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Tax code cannot be empty")
	}
	if len(code) > 20 {
		return nil, shared.NewDomainError("INVALID_CODE", "Tax code cannot exceed 20 characters")
	}
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return nil, shared.NewDomainError("INVALID_RATE", "Tax rate must be between 0 and 100 percent")
	}
	return &TaxCode{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Code:         code,
		Description:  description,
		RatePercent:  rate,
		Active:       true,
	}, nil
}
