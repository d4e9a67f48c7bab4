package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/catalog"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineResolver turns raw entries into line candidates.
// It only reads from its collaborators.
type LineResolver struct {
	products    catalog.ProductRepository
	taxCodes    catalog.TaxCodeRepository
	suppliers   partner.SupplierRepository
	assignments partner.AssignmentRepository
	prices      partner.PriceListRepository
	now         func() time.Time
}

// ResolverOption configures a LineResolver
type ResolverOption func(*LineResolver)

// WithClock overrides the time used for price list validity
func WithClock(now func() time.Time) ResolverOption {
	return func(r *LineResolver) {
		r.now = now
	}
}

// NewLineResolver creates a resolver over the catalog and supplier directory
func NewLineResolver(
	products catalog.ProductRepository,
	taxCodes catalog.TaxCodeRepository,
	suppliers partner.SupplierRepository,
	assignments partner.AssignmentRepository,
	prices partner.PriceListRepository,
	opts ...ResolverOption,
) *LineResolver {
	r := &LineResolver{
		products:    products,
		taxCodes:    taxCodes,
		suppliers:   suppliers,
		assignments: assignments,
		prices:      prices,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidateQuantity checks 0 < quantity <= MaxQuantity
func ValidateQuantity(productCode string, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return NewInvalidQuantityError(productCode, "must be greater than zero")
	}
	if quantity.GreaterThan(MaxQuantity) {
		return NewInvalidQuantityError(productCode, "must not exceed "+MaxQuantity.String())
	}
	return nil
}

// Resolve resolves one entry
func (r *LineResolver) Resolve(ctx context.Context, tenantID uuid.UUID, entry ProductEntry) (*LineCandidate, error) {
	code := catalog.NormalizeCode(entry.ProductCode)
	if err := ValidateQuantity(code, entry.Quantity); err != nil {
		return nil, err
	}
	if entry.UnitPrice != nil && entry.UnitPrice.IsNegative() {
		return nil, NewValidationError("unit_price", "Unit price cannot be negative").WithDetail(DetailProductCode, code)
	}

	product, err := r.products.FindByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, NewProductNotFoundError(code)
		}
		return nil, fmt.Errorf("find product %s: %w", code, err)
	}
	if !product.IsActive() {
		return nil, NewProductNotFoundError(code)
	}

	assignment, err := r.assignments.FindByProduct(ctx, tenantID, product.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, NewSupplierNotAssignedError(code)
		}
		return nil, fmt.Errorf("find supplier assignment for %s: %w", code, err)
	}

	supplier, err := r.suppliers.FindByID(ctx, tenantID, assignment.SupplierID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, NewSupplierNotAssignedError(code)
		}
		return nil, fmt.Errorf("find supplier %s: %w", assignment.SupplierID, err)
	}
	if !supplier.IsActive() {
		return nil, NewSupplierNotAssignedError(code)
	}
	if !supplier.HasCurrency() {
		return nil, NewSupplierCurrencyUndefinedError(code, supplier.Code)
	}

	unitPrice, err := r.resolvePrice(ctx, tenantID, entry, product, supplier)
	if err != nil {
		return nil, err
	}

	taxRate, err := r.resolveTaxRate(ctx, tenantID, product, supplier)
	if err != nil {
		return nil, err
	}

	return &LineCandidate{
		ProductID:      product.ID,
		ProductCode:    product.Code,
		ProductName:    product.Name,
		SupplierID:     supplier.ID,
		SupplierName:   supplier.Name,
		Currency:       supplier.Currency,
		UOM:            product.Unit,
		UnitPrice:      unitPrice,
		TaxRatePercent: taxRate,
		Quantity:       entry.Quantity,
		Notes:          entry.Notes,
	}, nil
}

// ResolveAll resolves every entry, stopping at the first failure
func (r *LineResolver) ResolveAll(ctx context.Context, tenantID uuid.UUID, entries []ProductEntry) ([]LineCandidate, error) {
	candidates := make([]LineCandidate, 0, len(entries))
	for _, entry := range entries {
		candidate, err := r.Resolve(ctx, tenantID, entry)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *candidate)
	}
	return candidates, nil
}

// resolvePrice applies override, then supplier price list, then standard price
func (r *LineResolver) resolvePrice(ctx context.Context, tenantID uuid.UUID, entry ProductEntry, product *catalog.Product, supplier *partner.Supplier) (decimal.Decimal, error) {
	if entry.UnitPrice != nil {
		return *entry.UnitPrice, nil
	}
	price, err := r.prices.FindPriceAt(ctx, tenantID, supplier.ID, product.ID, r.now())
	if err != nil {
		return decimal.Zero, fmt.Errorf("find supplier price for %s: %w", product.Code, err)
	}
	if price != nil {
		return price.UnitPrice, nil
	}
	return product.StandardPrice, nil
}

// resolveTaxRate uses the product tax code, then the supplier tax code.
// Absent, unknown, or inactive codes yield a zero rate.
func (r *LineResolver) resolveTaxRate(ctx context.Context, tenantID uuid.UUID, product *catalog.Product, supplier *partner.Supplier) (decimal.Decimal, error) {
	code := product.TaxCode
	if code == "" {
		code = supplier.TaxCode
	}
	if code == "" {
		return decimal.Zero, nil
	}
	tc, err := r.taxCodes.FindByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("find tax code %s: %w", code, err)
	}
	if !tc.Active {
		return decimal.Zero, nil
	}
	return tc.RatePercent, nil
}
