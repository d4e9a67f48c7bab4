package procurementapp

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/erp/procurement/internal/domain/catalog"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/procurement"
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

// MockTransactionScope is a mock implementation of TransactionScope
type MockTransactionScope struct {
	mock.Mock
}

func (m *MockTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// MockEventPublisher captures published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
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

func (f *catalogFixture) addSupplier(code, currency string) *partner.Supplier {
	s, err := partner.NewSupplier(f.tenantID, code, code+" Ltd")
	if err != nil {
		panic(err)
	}
	if currency != "" {
		if err := s.SetCurrency(currency); err != nil {
			panic(err)
		}
	}
	f.suppliers[s.ID] = s
	return s
}

func (f *catalogFixture) addProduct(code, standardPrice, taxCode string, supplier *partner.Supplier) *catalog.Product {
	p, err := catalog.NewProduct(f.tenantID, code, code+" name", "pcs", decimal.RequireFromString(standardPrice))
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

func (f *catalogFixture) resolver() *procurement.LineResolver {
	return procurement.NewLineResolver(fixtureProducts{f}, fixtureTaxCodes{f}, fixtureSuppliers{f}, fixtureAssignments{f}, fixturePrices{f})
}

type fixtureProducts struct{ f *catalogFixture }

func (r fixtureProducts) FindByCode(_ context.Context, _ uuid.UUID, code string) (*catalog.Product, error) {
	if p, ok := r.f.products[code]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r fixtureProducts) FindByCodes(_ context.Context, _ uuid.UUID, codes []string) ([]catalog.Product, error) {
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

// memoryStore holds orders, sequences and history. Orders are stored by
// value so callers never share state with the store. Transition writes are
// compare-and-swap on status and version.
type memoryStore struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]procurement.PurchaseOrder
	seq       map[int]int64
	history   []procurement.StatusHistoryEntry
	createErr error
	casErr    error
	// onApply runs before the compare-and-swap, standing in for a
	// concurrent writer
	onApply func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders: make(map[uuid.UUID]procurement.PurchaseOrder),
		seq:    make(map[int]int64),
	}
}

func (s *memoryStore) Next(_ context.Context, _ uuid.UUID, year int) (int64, error) {
	s.seq[year]++
	return s.seq[year], nil
}

func (s *memoryStore) Create(_ context.Context, order *procurement.PurchaseOrder) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, o := range s.orders {
		if o.OrderNumber == order.OrderNumber {
			return procurement.NewOrderNumberConflictError(order.OrderNumber)
		}
	}
	s.orders[order.ID] = *order
	return nil
}

func (s *memoryStore) FindByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, procurement.NewOrderNotFoundError(id)
	}
	o.ClearDomainEvents()
	return &o, nil
}

func (s *memoryStore) FindAll(_ context.Context, _ uuid.UUID, filter procurement.OrderFilter) ([]procurement.PurchaseOrder, int64, error) {
	out := make([]procurement.PurchaseOrder, 0, len(s.orders))
	for _, o := range s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, int64(len(out)), nil
}

func (s *memoryStore) ApplyTransition(_ context.Context, order *procurement.PurchaseOrder) error {
	if s.casErr != nil {
		return s.casErr
	}
	if s.onApply != nil {
		s.onApply()
	}
	t := order.LastTransition()
	stored, ok := s.orders[order.ID]
	if !ok || stored.Status != t.FromStatus || stored.Version != t.FromVersion {
		return procurement.NewTransitionConflictError(order.ID, t.FromStatus, t.Action)
	}
	cp := *order
	cp.ClearDomainEvents()
	s.orders[order.ID] = cp
	return nil
}

func (s *memoryStore) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	delete(s.orders, id)
	return nil
}

func (s *memoryStore) Append(_ context.Context, entry *procurement.StatusHistoryEntry) error {
	s.history = append(s.history, *entry)
	return nil
}

func (s *memoryStore) ListByOrder(_ context.Context, _ uuid.UUID, orderID uuid.UUID, _ shared.Filter) ([]procurement.StatusHistoryEntry, int64, error) {
	var out []procurement.StatusHistoryEntry
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].OrderID == orderID {
			out = append(out, s.history[i])
		}
	}
	return out, int64(len(out)), nil
}

func (s *memoryStore) historyFor(orderID uuid.UUID) []procurement.StatusHistoryEntry {
	var out []procurement.StatusHistoryEntry
	for _, h := range s.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out
}

// memoryTxScope serializes transactions and restores the store when fn fails
type memoryTxScope struct {
	store *memoryStore
	calls int
}

func (t *memoryTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.calls++

	orders := make(map[uuid.UUID]procurement.PurchaseOrder, len(t.store.orders))
	for k, v := range t.store.orders {
		orders[k] = v
	}
	seq := make(map[int]int64, len(t.store.seq))
	for k, v := range t.store.seq {
		seq[k] = v
	}
	history := append([]procurement.StatusHistoryEntry(nil), t.store.history...)

	if err := fn(t); err != nil {
		t.store.orders, t.store.seq, t.store.history = orders, seq, history
		return err
	}
	return nil
}

func (t *memoryTxScope) OrderRepo() procurement.PurchaseOrderRepository    { return t.store }
func (t *memoryTxScope) NumberAllocator() procurement.OrderNumberAllocator { return t.store }
func (t *memoryTxScope) HistoryRepo() procurement.StatusHistoryRepository  { return t.store }

func ptr[T any](v T) *T {
	return &v
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}
