package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/erp/procurement/internal/infrastructure/persistence"
	"github.com/erp/procurement/internal/infrastructure/persistence/persistencetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

const sampleSeed = `
tenant_id: 6f1c2a7e-3b0d-4c8e-9a51-2d7f0e4b8c10
tax_codes:
  - code: vat23
    description: Standard VAT
    rate: 23
suppliers:
  - code: sup-001
    name: Alpha Steel
    currency: pln
    tax_code: VAT23
  - code: SUP-002
    name: Beta Paper
products:
  - code: bolt-m8
    name: Bolt M8
    unit: pcs
    standard_price: "0.45"
    tax_code: VAT23
    supplier: SUP-001
  - code: PAPER-A4
    name: Paper A4
    unit: ream
    standard_price: "14.90"
prices:
  - supplier: sup-001
    product: BOLT-M8
    unit_price: "0.40"
    valid_from: 2026-01-01T00:00:00Z
`

func newRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Products:    persistence.NewGormProductRepository(db),
		TaxCodes:    persistence.NewGormTaxCodeRepository(db),
		Suppliers:   persistence.NewGormSupplierRepository(db),
		Assignments: persistence.NewGormAssignmentRepository(db),
		Prices:      persistence.NewGormPriceListRepository(db),
	}
}

func TestParse(t *testing.T) {
	t.Run("sample", func(t *testing.T) {
		f, err := Parse(strings.NewReader(sampleSeed))
		require.NoError(t, err)
		assert.Equal(t, "6f1c2a7e-3b0d-4c8e-9a51-2d7f0e4b8c10", f.TenantID.String())
		require.Len(t, f.Products, 2)
		assert.True(t, f.Products[0].StandardPrice.Equal(decimal.RequireFromString("0.45")))
		assert.True(t, f.TaxCodes[0].Rate.Equal(decimal.NewFromInt(23)))
		require.Len(t, f.Prices, 1)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), f.Prices[0].ValidFrom.UTC())
		assert.Nil(t, f.Prices[0].ValidTo)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Parse(strings.NewReader("tenant_id: 6f1c2a7e-3b0d-4c8e-9a51-2d7f0e4b8c10\nwarehouses: []\n"))
		assert.Error(t, err)
	})

	t.Run("missing tenant", func(t *testing.T) {
		_, err := Parse(strings.NewReader("products: []\n"))
		assert.ErrorContains(t, err, "tenant_id")
	})
}

func TestLoader_Load(t *testing.T) {
	db := persistencetest.NewSQLiteDB(t)
	repos := newRepositories(db)
	core, logs := observer.New(zap.InfoLevel)
	loader := NewLoader(repos, zap.New(core))
	ctx := context.Background()

	f, err := Parse(strings.NewReader(sampleSeed))
	require.NoError(t, err)

	sum, err := loader.Load(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{TaxCodes: 1, Suppliers: 2, Products: 2, Assignments: 1, Prices: 1}, sum)
	assert.Equal(t, 1, logs.FilterMessage("Catalog seed loaded").Len())

	bolt, err := repos.Products.FindByCode(ctx, f.TenantID, "BOLT-M8")
	require.NoError(t, err)
	assert.Equal(t, "VAT23", bolt.TaxCode)

	sup, err := repos.Suppliers.FindByCode(ctx, f.TenantID, "SUP-001")
	require.NoError(t, err)
	assert.Equal(t, valueobject.Currency("PLN"), sup.Currency)

	assignment, err := repos.Assignments.FindByProduct(ctx, f.TenantID, bolt.ID)
	require.NoError(t, err)
	assert.Equal(t, sup.ID, assignment.SupplierID)

	price, err := repos.Prices.FindPriceAt(ctx, f.TenantID, sup.ID, bolt.ID, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.True(t, price.UnitPrice.Equal(decimal.RequireFromString("0.40")))

	t.Run("reloading updates in place", func(t *testing.T) {
		f.Products[0].Name = "Bolt M8 zinc"
		_, err := loader.Load(ctx, f)
		require.NoError(t, err)

		again, err := repos.Products.FindByCode(ctx, f.TenantID, "BOLT-M8")
		require.NoError(t, err)
		assert.Equal(t, bolt.ID, again.ID)
		assert.Equal(t, "Bolt M8 zinc", again.Name)

		var products, assignments int64
		require.NoError(t, db.Table("products").Count(&products).Error)
		require.NoError(t, db.Table("product_suppliers").Count(&assignments).Error)
		assert.EqualValues(t, 2, products)
		assert.EqualValues(t, 1, assignments)
	})
}

func TestLoader_UnknownSupplier(t *testing.T) {
	loader := NewLoader(newRepositories(persistencetest.NewSQLiteDB(t)), nil)
	f, err := Parse(strings.NewReader(`
tenant_id: 6f1c2a7e-3b0d-4c8e-9a51-2d7f0e4b8c10
products:
  - code: BOLT-M8
    name: Bolt M8
    unit: pcs
    standard_price: "0.45"
    supplier: SUP-404
`))
	require.NoError(t, err)

	_, err = loader.Load(context.Background(), f)
	assert.ErrorContains(t, err, "unknown supplier SUP-404")
}
