package procurement

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/catalog"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// catalogFixture is an in-memory catalog and supplier directory
type catalogFixture struct {
	tenantID    uuid.UUID
	products    map[string]*catalog.Product
	taxCodes    map[string]*catalog.TaxCode
	suppliers   map[uuid.UUID]*partner.Supplier
	assignments map[uuid.UUID]*partner.ProductAssignment
	prices      []partner.SupplierPrice
}

func newCatalogFixture() *catalogFixture {
	return &catalogFixture{
		tenantID:    uuid.New(),
		products:    make(map[string]*catalog.Product),
		taxCodes:    make(map[string]*catalog.TaxCode),
		suppliers:   make(map[uuid.UUID]*partner.Supplier),
		assignments: make(map[uuid.UUID]*partner.ProductAssignment),
	}
}

func (f *catalogFixture) addSupplier(code, currency, taxCode string) *partner.Supplier {
	s, err := partner.NewSupplier(f.tenantID, code, code+" Ltd")
	if err != nil {
		panic(err)
	}
	if currency != "" {
		if err := s.SetCurrency(currency); err != nil {
			panic(err)
		}
	}
	if taxCode != "" {
		s.SetTaxCode(taxCode)
	}
	f.suppliers[s.ID] = s
	return s
}

func (f *catalogFixture) addProduct(code string, standardPrice int64, taxCode string, supplier *partner.Supplier) *catalog.Product {
	p, err := catalog.NewProduct(f.tenantID, code, code+" name", "pcs", decimal.NewFromInt(standardPrice))
	if err != nil {
		panic(err)
	}
	if taxCode != "" {
		p.SetTaxCode(taxCode)
	}
	f.products[p.Code] = p
	if supplier != nil {
		a, err := partner.NewProductAssignment(f.tenantID, p.ID, supplier.ID)
		if err != nil {
			panic(err)
		}
		f.assignments[p.ID] = a
	}
	return p
}

func (f *catalogFixture) addTaxCode(code string, rate int64) {
	tc, err := catalog.NewTaxCode(f.tenantID, code, code, decimal.NewFromInt(rate))
	if err != nil {
		panic(err)
	}
	f.taxCodes[tc.Code] = tc
}

func (f *catalogFixture) addPrice(supplier *partner.Supplier, product *catalog.Product, price string, from time.Time, to *time.Time) {
	p, err := partner.NewSupplierPrice(f.tenantID, supplier.ID, product.ID, decimal.RequireFromString(price), from, to)
	if err != nil {
		panic(err)
	}
	f.prices = append(f.prices, *p)
}

func (f *catalogFixture) resolver(opts ...ResolverOption) *LineResolver {
	return NewLineResolver(fixtureProducts{f}, fixtureTaxCodes{f}, fixtureSuppliers{f}, fixtureAssignments{f}, fixturePrices{f}, opts...)
}

type fixtureProducts struct{ f *catalogFixture }

func (r fixtureProducts) FindByCode(_ context.Context, _ uuid.UUID, code string) (*catalog.Product, error) {
	if p, ok := r.f.products[code]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r fixtureProducts) FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(codes))
	for _, c := range codes {
		if p, ok := r.f.products[c]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r fixtureProducts) Save(_ context.Context, p *catalog.Product) error {
	r.f.products[p.Code] = p
	return nil
}

type fixtureTaxCodes struct{ f *catalogFixture }

func (r fixtureTaxCodes) FindByCode(_ context.Context, _ uuid.UUID, code string) (*catalog.TaxCode, error) {
	if tc, ok := r.f.taxCodes[code]; ok {
		return tc, nil
	}
	return nil, shared.ErrNotFound
}

func (r fixtureTaxCodes) Save(_ context.Context, tc *catalog.TaxCode) error {
	r.f.taxCodes[tc.Code] = tc
	return nil
}

type fixtureSuppliers struct{ f *catalogFixture }

func (r fixtureSuppliers) FindByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*partner.Supplier, error) {
	if s, ok := r.f.suppliers[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r fixtureSuppliers) FindByCode(_ context.Context, _ uuid.UUID, code string) (*partner.Supplier, error) {
	for _, s := range r.f.suppliers {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r fixtureSuppliers) Save(_ context.Context, s *partner.Supplier) error {
	r.f.suppliers[s.ID] = s
	return nil
}

type fixtureAssignments struct{ f *catalogFixture }

func (r fixtureAssignments) FindByProduct(_ context.Context, _ uuid.UUID, productID uuid.UUID) (*partner.ProductAssignment, error) {
	if a, ok := r.f.assignments[productID]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (r fixtureAssignments) Save(_ context.Context, a *partner.ProductAssignment) error {
	r.f.assignments[a.ProductID] = a
	return nil
}

type fixturePrices struct{ f *catalogFixture }

func (r fixturePrices) FindPriceAt(_ context.Context, _ uuid.UUID, supplierID, productID uuid.UUID, t time.Time) (*partner.SupplierPrice, error) {
	var matching []partner.SupplierPrice
	for _, p := range r.f.prices {
		if p.SupplierID == supplierID && p.ProductID == productID {
			matching = append(matching, p)
		}
	}
	return partner.SelectPriceAt(matching, t), nil
}

func (r fixturePrices) Save(_ context.Context, p *partner.SupplierPrice) error {
	r.f.prices = append(r.f.prices, *p)
	return nil
}

// memoryOrderStore implements the order, number and history repositories
type memoryOrderStore struct {
	orders  map[uuid.UUID]*PurchaseOrder
	numbers map[string]bool
	seq     map[int]int64
	history []StatusHistoryEntry
	failOn  int
	created int
}

func newMemoryOrderStore() *memoryOrderStore {
	return &memoryOrderStore{
		orders:  make(map[uuid.UUID]*PurchaseOrder),
		numbers: make(map[string]bool),
		seq:     make(map[int]int64),
	}
}

func (s *memoryOrderStore) Next(_ context.Context, _ uuid.UUID, year int) (int64, error) {
	s.seq[year]++
	return s.seq[year], nil
}

func (s *memoryOrderStore) Create(_ context.Context, order *PurchaseOrder) error {
	s.created++
	if s.failOn > 0 && s.created == s.failOn {
		return NewOrderNumberConflictError(order.OrderNumber)
	}
	if s.numbers[order.OrderNumber] {
		return NewOrderNumberConflictError(order.OrderNumber)
	}
	s.numbers[order.OrderNumber] = true
	s.orders[order.ID] = order
	return nil
}

func (s *memoryOrderStore) FindByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*PurchaseOrder, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, NewOrderNotFoundError(id)
}

func (s *memoryOrderStore) FindAll(_ context.Context, _ uuid.UUID, _ OrderFilter) ([]PurchaseOrder, int64, error) {
	out := make([]PurchaseOrder, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (s *memoryOrderStore) ApplyTransition(_ context.Context, _ *PurchaseOrder) error {
	return nil
}

func (s *memoryOrderStore) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	delete(s.orders, id)
	return nil
}

func (s *memoryOrderStore) Append(_ context.Context, entry *StatusHistoryEntry) error {
	s.history = append(s.history, *entry)
	return nil
}

func (s *memoryOrderStore) ListByOrder(_ context.Context, _ uuid.UUID, orderID uuid.UUID, _ shared.Filter) ([]StatusHistoryEntry, int64, error) {
	var out []StatusHistoryEntry
	for _, h := range s.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}
