package partner

import (
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
	SupplierStatusBlocked  SupplierStatus = "blocked" // Blocked due to quality/payment issues
)

// Supplier represents a supplier in the partner context.
// Currency is the settlement currency of every order placed with the
// supplier; an empty value means the supplier cannot be ordered from yet.
type Supplier struct {
	shared.TenantAggregateRoot
	Code     string
	Name     string
	Status   SupplierStatus
	Currency valueobject.Currency
	TaxCode  string
}

// NewSupplier creates a new active supplier without a currency
func NewSupplier(tenantID uuid.UUID, code, name string) (*Supplier, error) {
	if err := validateSupplierCode(code); err != nil {
		return nil, err
	}
	if err := validateSupplierName(name); err != nil {
		return nil, err
	}

	return &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                name,
		Status:              SupplierStatusActive,
	}, nil
}

// IsActive returns true if orders can be placed with the supplier
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

// HasCurrency returns true if the supplier's settlement currency is defined
func (s *Supplier) HasCurrency() bool {
	return s.Currency != ""
}

// SetCurrency sets the settlement currency
func (s *Supplier) SetCurrency(code string) error {
	currency, err := valueobject.ParseCurrency(code)
	if err != nil {
		return shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	s.Currency = currency
	s.Touch()
	s.IncrementVersion()
	return nil
}

// SetTaxCode sets the supplier default tax code used when a product has none
func (s *Supplier) SetTaxCode(code string) {
	s.TaxCode = strings.ToUpper(strings.TrimSpace(code))
	s.Touch()
	s.IncrementVersion()
}

// Deactivate marks the supplier inactive
func (s *Supplier) Deactivate() error {
	if s.Status == SupplierStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Supplier is already inactive")
	}
	s.Status = SupplierStatusInactive
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Block blocks the supplier
func (s *Supplier) Block() error {
	if s.Status == SupplierStatusBlocked {
		return shared.NewDomainError("ALREADY_BLOCKED", "Supplier is already blocked")
	}
	s.Status = SupplierStatusBlocked
	s.Touch()
	s.IncrementVersion()
	return nil
}

func validateSupplierCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Supplier code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Supplier code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Supplier code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateSupplierName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
	}
	return nil
}
