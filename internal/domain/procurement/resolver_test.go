package procurement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok, "expected domain error, got %T: %v", err, err)
	assert.Equal(t, code, de.Code)
}

func TestLineResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	f := newCatalogFixture()
	f.addTaxCode("VAT23", 23)
	f.addTaxCode("VAT8", 8)
	usd := f.addSupplier("SUP-1", "USD", "VAT8")
	product := f.addProduct("PROD-A", 10, "VAT23", usd)
	r := f.resolver(WithClock(func() time.Time { return now }))

	t.Run("resolves product supplier currency and tax", func(t *testing.T) {
		c, err := r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "prod-a", Quantity: qty("3")})
		require.NoError(t, err)
		assert.Equal(t, product.ID, c.ProductID)
		assert.Equal(t, usd.ID, c.SupplierID)
		assert.Equal(t, valueobject.USD, c.Currency)
		assert.Equal(t, "pcs", c.UOM)
		assert.True(t, c.UnitPrice.Equal(decimal.NewFromInt(10)), "falls back to standard price")
		assert.True(t, c.TaxRatePercent.Equal(decimal.NewFromInt(23)), "product tax code wins")
		assert.True(t, c.Quantity.Equal(qty("3")))
	})

	t.Run("rejects zero and negative quantities", func(t *testing.T) {
		_, err := r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "PROD-A", Quantity: decimal.Zero})
		assertCode(t, err, CodeInvalidQuantity)
		assert.True(t, errors.Is(err, ErrInvalidQuantity))

		_, err = r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "PROD-A", Quantity: qty("-1")})
		assertCode(t, err, CodeInvalidQuantity)
	})

	t.Run("rejects quantity above maximum", func(t *testing.T) {
		_, err := r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "PROD-A", Quantity: qty("1000000")})
		assertCode(t, err, CodeInvalidQuantity)

		_, err = r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "PROD-A", Quantity: MaxQuantity})
		assert.NoError(t, err)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "NOPE", Quantity: qty("1")})
		assertCode(t, err, CodeProductNotFound)
		de, _ := shared.AsDomainError(err)
		assert.Equal(t, "NOPE", de.Details[DetailProductCode])
	})
}

func TestLineResolver_ResolutionFailures(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	active := f.addSupplier("SUP-OK", "EUR", "")
	noCurrency := f.addSupplier("SUP-NOCUR", "", "")
	blocked := f.addSupplier("SUP-BLOCKED", "EUR", "")
	require.NoError(t, blocked.Block())

	inactive := f.addProduct("INACTIVE", 1, "", active)
	require.NoError(t, inactive.Deactivate())
	f.addProduct("ORPHAN", 1, "", nil)
	f.addProduct("NOCUR", 1, "", noCurrency)
	f.addProduct("BLOCKED", 1, "", blocked)
	r := f.resolver()

	tests := []struct {
		code string
		want string
	}{
		{"INACTIVE", CodeProductNotFound},
		{"ORPHAN", CodeSupplierNotAssigned},
		{"BLOCKED", CodeSupplierNotAssigned},
		{"NOCUR", CodeSupplierCurrencyUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: tt.code, Quantity: qty("1")})
			assertCode(t, err, tt.want)
			de, _ := shared.AsDomainError(err)
			assert.Equal(t, tt.code, de.Details[DetailProductCode])
		})
	}
}

func TestLineResolver_PriceCascade(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	f := newCatalogFixture()
	sup := f.addSupplier("SUP-1", "PLN", "")
	p := f.addProduct("PROD-P", 50, "", sup)
	expired := now.Add(-time.Hour)
	f.addPrice(sup, p, "30", now.AddDate(-1, 0, 0), &expired)
	f.addPrice(sup, p, "42.5", now.AddDate(0, -1, 0), nil)
	f.addPrice(sup, p, "40", now.AddDate(0, -2, 0), nil)
	f.addPrice(sup, p, "99", now.AddDate(0, 0, 1), nil)
	r := f.resolver(WithClock(func() time.Time { return now }))

	t.Run("latest valid supplier price", func(t *testing.T) {
		c, err := r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "PROD-P", Quantity: qty("1")})
		require.NoError(t, err)
		assert.True(t, c.UnitPrice.Equal(qty("42.5")), "got %s", c.UnitPrice)
	})

	t.Run("entry override wins", func(t *testing.T) {
		override := qty("12.34")
		c, err := r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "PROD-P", Quantity: qty("1"), UnitPrice: &override})
		require.NoError(t, err)
		assert.True(t, c.UnitPrice.Equal(override))
	})

	t.Run("negative override is rejected", func(t *testing.T) {
		override := qty("-1")
		_, err := r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "PROD-P", Quantity: qty("1"), UnitPrice: &override})
		assertCode(t, err, CodeValidationFailed)
	})
}

func TestLineResolver_TaxRate(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	f.addTaxCode("VAT5", 5)
	withTax := f.addSupplier("SUP-T", "EUR", "VAT5")
	unknownTax := f.addSupplier("SUP-U", "EUR", "MISSING")
	f.addProduct("SUPTAX", 1, "", withTax)
	f.addProduct("UNKNOWN", 1, "", unknownTax)
	r := f.resolver()

	c, err := r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "SUPTAX", Quantity: qty("1")})
	require.NoError(t, err)
	assert.True(t, c.TaxRatePercent.Equal(decimal.NewFromInt(5)), "supplier tax code applies when product has none")

	c, err = r.Resolve(ctx, f.tenantID, ProductEntry{ProductCode: "UNKNOWN", Quantity: qty("1")})
	require.NoError(t, err)
	assert.True(t, c.TaxRatePercent.IsZero())
}

func TestLineResolver_ResolveAllStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	products := new(MockProductRepository)
	products.On("FindByCode", ctx, tenantID, "MISSING").Return(nil, shared.ErrNotFound).Once()

	r := NewLineResolver(products, nil, nil, nil, nil)
	_, err := r.ResolveAll(ctx, tenantID, []ProductEntry{
		{ProductCode: "MISSING", Quantity: qty("1")},
		{ProductCode: "NEVER", Quantity: qty("1")},
	})
	assertCode(t, err, CodeProductNotFound)
	products.AssertExpectations(t)
	products.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything, "NEVER")
}

func TestLineResolver_WrapsInfrastructureErrors(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	boom := errors.New("connection reset")
	products := new(MockProductRepository)
	products.On("FindByCode", ctx, tenantID, "X").Return(nil, boom)

	r := NewLineResolver(products, nil, nil, nil, nil)
	_, err := r.Resolve(ctx, tenantID, ProductEntry{ProductCode: "x", Quantity: qty("1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsResolutionError(err))
}
