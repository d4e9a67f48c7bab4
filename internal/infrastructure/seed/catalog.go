// Package seed loads development catalog data from YAML files.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/catalog"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a catalog seed
type File struct {
	TenantID  uuid.UUID      `yaml:"tenant_id"`
	TaxCodes  []TaxCodeSeed  `yaml:"tax_codes"`
	Suppliers []SupplierSeed `yaml:"suppliers"`
	Products  []ProductSeed  `yaml:"products"`
	Prices    []PriceSeed    `yaml:"prices"`
}

// TaxCodeSeed is one tax code entry
type TaxCodeSeed struct {
	Code        string          `yaml:"code"`
	Description string          `yaml:"description"`
	Rate        decimal.Decimal `yaml:"rate"`
}

// SupplierSeed is one supplier entry; an empty currency leaves it undefined
type SupplierSeed struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
	TaxCode  string `yaml:"tax_code"`
}

// ProductSeed is one product entry. Supplier names the assigned supplier code.
type ProductSeed struct {
	Code          string          `yaml:"code"`
	Name          string          `yaml:"name"`
	Unit          string          `yaml:"unit"`
	StandardPrice decimal.Decimal `yaml:"standard_price"`
	TaxCode       string          `yaml:"tax_code"`
	Supplier      string          `yaml:"supplier"`
}

// PriceSeed is one supplier price list entry
type PriceSeed struct {
	Supplier  string          `yaml:"supplier"`
	Product   string          `yaml:"product"`
	UnitPrice decimal.Decimal `yaml:"unit_price"`
	ValidFrom time.Time       `yaml:"valid_from"`
	ValidTo   *time.Time      `yaml:"valid_to"`
}

// Repositories are the stores a seed writes to
type Repositories struct {
	Products    catalog.ProductRepository
	TaxCodes    catalog.TaxCodeRepository
	Suppliers   partner.SupplierRepository
	Assignments partner.AssignmentRepository
	Prices      partner.PriceListRepository
}

// Summary counts what a seed run wrote
type Summary struct {
	TaxCodes    int
	Suppliers   int
	Products    int
	Assignments int
	Prices      int
}

// Parse decodes a seed file. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if f.TenantID == uuid.Nil {
		return nil, errors.New("seed file: tenant_id is required")
	}
	return &f, nil
}

// Loader writes seed files through the domain repositories. Rows whose code
// already exists are updated in place; price entries are always appended.
type Loader struct {
	repos  Repositories
	logger *zap.Logger
}

// NewLoader creates a Loader
func NewLoader(repos Repositories, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{repos: repos, logger: logger}
}

// Load writes f in dependency order: tax codes, suppliers, products with
// their assignment, then prices
func (l *Loader) Load(ctx context.Context, f *File) (Summary, error) {
	var sum Summary
	tenantID := f.TenantID

	for _, s := range f.TaxCodes {
		tc, err := catalog.NewTaxCode(tenantID, s.Code, s.Description, s.Rate)
		if err != nil {
			return sum, fmt.Errorf("tax code %s: %w", s.Code, err)
		}
		if existing, err := l.repos.TaxCodes.FindByCode(ctx, tenantID, tc.Code); err == nil {
			tc.ID = existing.ID
			tc.CreatedAt = existing.CreatedAt
		} else if !errors.Is(err, shared.ErrNotFound) {
			return sum, err
		}
		if err := l.repos.TaxCodes.Save(ctx, tc); err != nil {
			return sum, fmt.Errorf("save tax code %s: %w", s.Code, err)
		}
		sum.TaxCodes++
	}

	suppliers := make(map[string]*partner.Supplier, len(f.Suppliers))
	for _, s := range f.Suppliers {
		sup, err := partner.NewSupplier(tenantID, s.Code, s.Name)
		if err != nil {
			return sum, fmt.Errorf("supplier %s: %w", s.Code, err)
		}
		if s.Currency != "" {
			if err := sup.SetCurrency(s.Currency); err != nil {
				return sum, fmt.Errorf("supplier %s: %w", s.Code, err)
			}
		}
		sup.SetTaxCode(s.TaxCode)
		if existing, err := l.repos.Suppliers.FindByCode(ctx, tenantID, sup.Code); err == nil {
			sup.ID = existing.ID
			sup.CreatedAt = existing.CreatedAt
			sup.Version = existing.Version
		} else if !errors.Is(err, shared.ErrNotFound) {
			return sum, err
		}
		if err := l.repos.Suppliers.Save(ctx, sup); err != nil {
			return sum, fmt.Errorf("save supplier %s: %w", s.Code, err)
		}
		suppliers[sup.Code] = sup
		sum.Suppliers++
	}

	products := make(map[string]*catalog.Product, len(f.Products))
	for _, s := range f.Products {
		p, err := catalog.NewProduct(tenantID, s.Code, s.Name, s.Unit, s.StandardPrice)
		if err != nil {
			return sum, fmt.Errorf("product %s: %w", s.Code, err)
		}
		p.SetTaxCode(s.TaxCode)
		if existing, err := l.repos.Products.FindByCode(ctx, tenantID, p.Code); err == nil {
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			p.Version = existing.Version
		} else if !errors.Is(err, shared.ErrNotFound) {
			return sum, err
		}
		if err := l.repos.Products.Save(ctx, p); err != nil {
			return sum, fmt.Errorf("save product %s: %w", s.Code, err)
		}
		products[p.Code] = p
		sum.Products++

		if s.Supplier == "" {
			continue
		}
		sup, ok := suppliers[codeKey(s.Supplier)]
		if !ok {
			return sum, fmt.Errorf("product %s: unknown supplier %s", s.Code, s.Supplier)
		}
		a, err := partner.NewProductAssignment(tenantID, p.ID, sup.ID)
		if err != nil {
			return sum, fmt.Errorf("assign product %s: %w", s.Code, err)
		}
		if err := l.repos.Assignments.Save(ctx, a); err != nil {
			return sum, fmt.Errorf("save assignment of %s: %w", s.Code, err)
		}
		sum.Assignments++
	}

	for _, s := range f.Prices {
		sup, ok := suppliers[codeKey(s.Supplier)]
		if !ok {
			return sum, fmt.Errorf("price: unknown supplier %s", s.Supplier)
		}
		p, ok := products[codeKey(s.Product)]
		if !ok {
			return sum, fmt.Errorf("price: unknown product %s", s.Product)
		}
		price, err := partner.NewSupplierPrice(tenantID, sup.ID, p.ID, s.UnitPrice, s.ValidFrom, s.ValidTo)
		if err != nil {
			return sum, fmt.Errorf("price of %s from %s: %w", s.Product, s.Supplier, err)
		}
		if err := l.repos.Prices.Save(ctx, price); err != nil {
			return sum, fmt.Errorf("save price of %s: %w", s.Product, err)
		}
		sum.Prices++
	}

	l.logger.Info("Catalog seed loaded",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("tax_codes", sum.TaxCodes),
		zap.Int("suppliers", sum.Suppliers),
		zap.Int("products", sum.Products),
		zap.Int("assignments", sum.Assignments),
		zap.Int("prices", sum.Prices),
	)
	return sum, nil
}

func codeKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
