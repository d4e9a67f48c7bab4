package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	procurementapp "github.com/erp/procurement/internal/application/procurement"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/event"
	"github.com/erp/procurement/internal/infrastructure/persistence"
	"github.com/erp/procurement/internal/infrastructure/seed"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogSeed() *seed.File {
	return &seed.File{
		TaxCodes: []seed.TaxCodeSeed{
			{Code: "VAT20", Description: "Standard rate", Rate: decimal.NewFromInt(20)},
		},
		Suppliers: []seed.SupplierSeed{
			{Code: "ACME", Name: "Acme Supplies", Currency: "EUR", TaxCode: "VAT20"},
			{Code: "GLOBEX", Name: "Globex Trading", Currency: "USD"},
			{Code: "NOCUR", Name: "No Currency Ltd"},
		},
		Products: []seed.ProductSeed{
			{Code: "P-100", Name: "Paper A4", Unit: "box", StandardPrice: decimal.NewFromInt(10), Supplier: "ACME"},
			{Code: "P-200", Name: "Toner", Unit: "pcs", StandardPrice: decimal.NewFromInt(5), Supplier: "ACME"},
			{Code: "P-300", Name: "Desk", Unit: "pcs", StandardPrice: decimal.NewFromInt(100), Supplier: "GLOBEX"},
			{Code: "P-400", Name: "Chair", Unit: "pcs", StandardPrice: decimal.NewFromInt(50), Supplier: "NOCUR"},
			{Code: "P-500", Name: "Unassigned", Unit: "pcs", StandardPrice: decimal.NewFromInt(1)},
		},
		Prices: []seed.PriceSeed{
			{Supplier: "ACME", Product: "P-100", UnitPrice: decimal.NewFromInt(8), ValidFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}

type procurementStack struct {
	db         *TestDB
	tenantID   uuid.UUID
	quickEntry *procurementapp.QuickEntryService
	lifecycle  *procurementapp.LifecycleService
	events     *eventRecorder
}

func newProcurementStack(t *testing.T, threshold decimal.Decimal) *procurementStack {
	t.Helper()
	tdb := NewTestDB(t)
	tenantID := tdb.SeedCatalog(catalogSeed())

	db := tdb.DB
	resolver := procurement.NewLineResolver(
		persistence.NewGormProductRepository(db),
		persistence.NewGormTaxCodeRepository(db),
		persistence.NewGormSupplierRepository(db),
		persistence.NewGormAssignmentRepository(db),
		persistence.NewGormPriceListRepository(db),
	)
	txScope := persistence.NewGormTransactionScope(db)

	bus := event.NewInMemoryEventBus(nil)
	recorder := &eventRecorder{}
	bus.Subscribe(recorder)

	quickEntry := procurementapp.NewQuickEntryService(resolver, txScope)
	quickEntry.SetEventPublisher(bus)
	lifecycle := procurementapp.NewLifecycleService(
		persistence.NewGormPurchaseOrderRepository(db),
		persistence.NewGormStatusHistoryRepository(db),
		txScope,
		procurementapp.WithApprovalThreshold(threshold),
	)
	lifecycle.SetEventPublisher(bus)

	return &procurementStack{db: tdb, tenantID: tenantID, quickEntry: quickEntry, lifecycle: lifecycle, events: recorder}
}

func quickEntryRequest(warehouseID uuid.UUID, lines ...procurementapp.QuickEntryLineInput) procurementapp.QuickEntryRequest {
	return procurementapp.QuickEntryRequest{Lines: lines, WarehouseID: &warehouseID}
}

func line(code string, qty int64) procurementapp.QuickEntryLineInput {
	return procurementapp.QuickEntryLineInput{ProductCode: code, Quantity: decimal.NewFromInt(qty)}
}

func TestQuickEntry_ConsolidatesBySupplier(t *testing.T) {
	s := newProcurementStack(t, decimal.Zero)
	ctx := context.Background()
	requester := uuid.New()

	resp, err := s.quickEntry.Create(ctx, s.tenantID, &requester, quickEntryRequest(uuid.New(),
		line("P-100", 2),
		line("P-300", 1),
		line(" p-100 ", 3),
		line("P-200", 4),
	))
	require.NoError(t, err)
	require.Len(t, resp.PurchaseOrders, 2)

	acme, globex := resp.PurchaseOrders[0], resp.PurchaseOrders[1]
	assert.Equal(t, "Acme Supplies", acme.SupplierName)
	assert.Equal(t, "EUR", acme.Currency)
	assert.Equal(t, 2, acme.TotalLines)
	// P-100: 5 x 8 from the price list, P-200: 4 x 5 standard price, 20% VAT
	assert.True(t, decimal.NewFromInt(60).Equal(acme.NetTotal), "net %s", acme.NetTotal)
	assert.True(t, decimal.NewFromInt(12).Equal(acme.VATTotal), "vat %s", acme.VATTotal)
	assert.True(t, decimal.NewFromInt(72).Equal(acme.GrossTotal), "gross %s", acme.GrossTotal)
	assert.True(t, strings.HasSuffix(acme.Number, "-00001"), acme.Number)

	assert.Equal(t, "USD", globex.Currency)
	assert.True(t, decimal.NewFromInt(100).Equal(globex.GrossTotal))
	assert.True(t, strings.HasSuffix(globex.Number, "-00002"), globex.Number)

	order, err := s.lifecycle.GetByID(ctx, s.tenantID, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusDraft.String(), order.Status)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, "P-100", order.Lines[0].ProductCode)
	assert.True(t, decimal.NewFromInt(5).Equal(order.Lines[0].Quantity))

	assert.Equal(t, []string{
		procurement.EventTypePurchaseOrderCreated,
		procurement.EventTypePurchaseOrderCreated,
	}, s.events.Types())
}

func TestQuickEntry_AmountsKeepFullPrecision(t *testing.T) {
	s := newProcurementStack(t, decimal.Zero)
	ctx := context.Background()
	buyer := uuid.New()
	third := decimal.RequireFromString("0.33335")

	resp, err := s.quickEntry.Create(ctx, s.tenantID, &buyer, quickEntryRequest(uuid.New(),
		procurementapp.QuickEntryLineInput{ProductCode: "P-100", Quantity: third},
		procurementapp.QuickEntryLineInput{ProductCode: "P-200", Quantity: third},
		procurementapp.QuickEntryLineInput{ProductCode: "P-300", Quantity: decimal.RequireFromString("0.00001")},
	))
	require.NoError(t, err)
	require.Len(t, resp.PurchaseOrders, 2)

	// 0.33335 x 8 and 0.33335 x 5 at 20% VAT
	acme := resp.PurchaseOrders[0]
	assert.Equal(t, "5.20026", acme.GrossTotal.String())

	stored, err := s.lifecycle.GetByID(ctx, s.tenantID, acme.ID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, l := range stored.Lines {
		assert.True(t, third.Equal(l.Quantity), "quantity %s", l.Quantity)
		sum = sum.Add(l.LineGross)
	}
	assert.True(t, stored.GrossTotal.Equal(sum), "gross_total %s, sum of lines %s", stored.GrossTotal, sum)
	assert.True(t, stored.GrossTotal.Equal(acme.GrossTotal), "stored %s, returned %s", stored.GrossTotal, acme.GrossTotal)

	globex, err := s.lifecycle.GetByID(ctx, s.tenantID, resp.PurchaseOrders[1].ID)
	require.NoError(t, err)
	require.Len(t, globex.Lines, 1)
	assert.Equal(t, "0.00001", globex.Lines[0].Quantity.String())
	assert.Equal(t, "0.001", globex.GrossTotal.String())
}

func TestLifecycle_NearlyCompleteReceiptCannotClose(t *testing.T) {
	s := newProcurementStack(t, decimal.Zero)
	ctx := context.Background()
	buyer, approver := uuid.New(), uuid.New()

	resp, err := s.quickEntry.Create(ctx, s.tenantID, &buyer, quickEntryRequest(uuid.New(), line("P-300", 1)))
	require.NoError(t, err)
	orderID := resp.PurchaseOrders[0].ID

	_, err = s.lifecycle.Submit(ctx, s.tenantID, orderID, &buyer)
	require.NoError(t, err)
	_, err = s.lifecycle.RouteForApproval(ctx, s.tenantID, orderID, &buyer)
	require.NoError(t, err)
	_, err = s.lifecycle.Approve(ctx, s.tenantID, orderID, &approver, procurementapp.ApproveRequest{})
	require.NoError(t, err)
	_, err = s.lifecycle.Confirm(ctx, s.tenantID, orderID, &buyer)
	require.NoError(t, err)

	almost := decimal.RequireFromString("99.995")
	_, err = s.lifecycle.RecordReceipt(ctx, s.tenantID, orderID, &buyer, procurementapp.ReceiptRequest{ReceivePercent: almost})
	require.NoError(t, err)

	order, err := s.lifecycle.GetByID(ctx, s.tenantID, orderID)
	require.NoError(t, err)
	assert.True(t, almost.Equal(order.ReceivePercent), "receive_percent %s", order.ReceivePercent)

	_, err = s.lifecycle.Close(ctx, s.tenantID, orderID, &buyer)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok, "unexpected error %v", err)
	assert.Equal(t, procurement.CodeIllegalTransition, de.Code)
}

func TestQuickEntry_FailsWholeBatch(t *testing.T) {
	s := newProcurementStack(t, decimal.Zero)
	ctx := context.Background()
	requester := uuid.New()

	tests := []struct {
		name string
		code string
		want string
	}{
		{"unknown product", "P-999", procurement.CodeProductNotFound},
		{"no supplier assignment", "P-500", procurement.CodeSupplierNotAssigned},
		{"supplier without currency", "P-400", procurement.CodeSupplierCurrencyUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.quickEntry.Create(ctx, s.tenantID, &requester, quickEntryRequest(uuid.New(),
				line("P-100", 1),
				line(tt.code, 1),
			))
			de, ok := shared.AsDomainError(err)
			require.True(t, ok, "expected domain error, got %v", err)
			assert.Equal(t, tt.want, de.Code)
		})
	}

	orders, total, err := s.lifecycle.List(ctx, s.tenantID, procurementapp.PurchaseOrderListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
	assert.Empty(t, s.events.Types())
}

func TestQuickEntry_ConcurrentNumbering(t *testing.T) {
	s := newProcurementStack(t, decimal.Zero)
	ctx := context.Background()
	const batches = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []string
		errs    []error
	)
	for i := 0; i < batches; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			requester := uuid.New()
			resp, err := s.quickEntry.Create(ctx, s.tenantID, &requester, quickEntryRequest(uuid.New(), line("P-300", 1)))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, resp.PurchaseOrders[0].Number)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Strings(numbers)
	year := numbers[0][3:7]
	for i, n := range numbers {
		assert.Equal(t, fmt.Sprintf("PO-%s-%05d", year, i+1), n)
	}
}

func TestLifecycle_ApprovalToClose(t *testing.T) {
	s := newProcurementStack(t, decimal.NewFromInt(50))
	ctx := context.Background()
	buyer, approver := uuid.New(), uuid.New()

	resp, err := s.quickEntry.Create(ctx, s.tenantID, &buyer, quickEntryRequest(uuid.New(), line("P-100", 10)))
	require.NoError(t, err)
	orderID := resp.PurchaseOrders[0].ID

	// gross 96 is above the threshold
	order, err := s.lifecycle.Submit(ctx, s.tenantID, orderID, &buyer)
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusPendingApproval.String(), order.Status)

	order, err = s.lifecycle.Approve(ctx, s.tenantID, orderID, &approver, procurementapp.ApproveRequest{Notes: "ok for Q3"})
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusApproved.String(), order.Status)
	require.NotNil(t, order.ApprovedBy)
	assert.Equal(t, approver, *order.ApprovedBy)

	_, err = s.lifecycle.Confirm(ctx, s.tenantID, orderID, &buyer)
	require.NoError(t, err)

	order, err = s.lifecycle.RecordReceipt(ctx, s.tenantID, orderID, &buyer, procurementapp.ReceiptRequest{ReceivePercent: decimal.NewFromInt(40)})
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusReceiving.String(), order.Status)

	_, err = s.lifecycle.Cancel(ctx, s.tenantID, orderID, &buyer, procurementapp.CancelRequest{})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, procurement.CodeCancelBlockedByReceipt, de.Code)

	_, err = s.lifecycle.Close(ctx, s.tenantID, orderID, &buyer)
	de, ok = shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, procurement.CodeIllegalTransition, de.Code)

	_, err = s.lifecycle.RecordReceipt(ctx, s.tenantID, orderID, &buyer, procurementapp.ReceiptRequest{ReceivePercent: decimal.NewFromInt(100)})
	require.NoError(t, err)
	order, err = s.lifecycle.Close(ctx, s.tenantID, orderID, &buyer)
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusClosed.String(), order.Status)
	assert.NotNil(t, order.ClosedAt)

	history, total, err := s.lifecycle.History(ctx, s.tenantID, orderID, shared.Filter{Page: 1, PageSize: 50})
	require.NoError(t, err)
	// create, submit, approve, confirm, two receipts, close
	assert.Equal(t, int64(7), total)
	assert.Len(t, history, 7)
}

func TestLifecycle_RejectReopenAndCancel(t *testing.T) {
	s := newProcurementStack(t, decimal.Zero)
	ctx := context.Background()
	buyer := uuid.New()

	resp, err := s.quickEntry.Create(ctx, s.tenantID, &buyer, quickEntryRequest(uuid.New(), line("P-300", 1)))
	require.NoError(t, err)
	orderID := resp.PurchaseOrders[0].ID

	order, err := s.lifecycle.Submit(ctx, s.tenantID, orderID, &buyer)
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusSubmitted.String(), order.Status)

	_, err = s.lifecycle.RouteForApproval(ctx, s.tenantID, orderID, &buyer)
	require.NoError(t, err)
	order, err = s.lifecycle.Reject(ctx, s.tenantID, orderID, &buyer, procurementapp.RejectRequest{Reason: "price too high for desks"})
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusRejected.String(), order.Status)

	order, err = s.lifecycle.Reopen(ctx, s.tenantID, orderID, &buyer)
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusDraft.String(), order.Status)

	order, err = s.lifecycle.Cancel(ctx, s.tenantID, orderID, &buyer, procurementapp.CancelRequest{Reason: "no longer needed"})
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusCancelled.String(), order.Status)

	assert.Contains(t, s.events.Types(), procurement.EventTypePurchaseOrderCancelled)
}

func TestLifecycle_BulkApprove(t *testing.T) {
	s := newProcurementStack(t, decimal.NewFromInt(1))
	ctx := context.Background()
	buyer := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		resp, err := s.quickEntry.Create(ctx, s.tenantID, &buyer, quickEntryRequest(uuid.New(), line("P-300", 1)))
		require.NoError(t, err)
		ids = append(ids, resp.PurchaseOrders[0].ID)
	}
	// only the first two are waiting for approval
	for _, id := range ids[:2] {
		_, err := s.lifecycle.Submit(ctx, s.tenantID, id, &buyer)
		require.NoError(t, err)
	}

	req := procurementapp.BulkStatusRequest{OrderIDs: ids, Action: procurementapp.BulkActionApprove}

	preview, err := s.lifecycle.BulkValidate(ctx, s.tenantID, &buyer, req)
	require.NoError(t, err)
	assert.True(t, preview.DryRun)
	assert.Equal(t, 2, preview.SuccessCount)
	assert.Equal(t, 1, preview.ErrorCount)

	untouched, err := s.lifecycle.GetByID(ctx, s.tenantID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusPendingApproval.String(), untouched.Status)

	result, err := s.lifecycle.BulkStatus(ctx, s.tenantID, &buyer, req)
	require.NoError(t, err)
	assert.False(t, result.DryRun)
	assert.Equal(t, 2, result.SuccessCount)
	require.Len(t, result.Results, 3)
	assert.Equal(t, procurement.CodeIllegalTransition, result.Results[2].ErrorCode)

	approved, err := s.lifecycle.GetByID(ctx, s.tenantID, ids[1])
	require.NoError(t, err)
	assert.Equal(t, procurement.StatusApproved.String(), approved.Status)
}

func TestLifecycle_TenantIsolation(t *testing.T) {
	s := newProcurementStack(t, decimal.Zero)
	ctx := context.Background()
	buyer := uuid.New()

	resp, err := s.quickEntry.Create(ctx, s.tenantID, &buyer, quickEntryRequest(uuid.New(), line("P-300", 1)))
	require.NoError(t, err)

	_, err = s.lifecycle.GetByID(ctx, uuid.New(), resp.PurchaseOrders[0].ID)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, procurement.CodeOrderNotFound, de.Code)
}

func TestLifecycle_ConcurrentSubmit(t *testing.T) {
	s := newProcurementStack(t, decimal.Zero)
	ctx := context.Background()
	buyer := uuid.New()

	resp, err := s.quickEntry.Create(ctx, s.tenantID, &buyer, quickEntryRequest(uuid.New(), line("P-300", 1)))
	require.NoError(t, err)
	orderID := resp.PurchaseOrders[0].ID

	const racers = 2
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.lifecycle.Submit(ctx, s.tenantID, orderID, &buyer)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		de, ok := shared.AsDomainError(err)
		require.True(t, ok, "unexpected error %v", err)
		assert.Equal(t, procurement.CodeIllegalTransition, de.Code)
	}
	assert.Equal(t, 1, succeeded)

	_, total, err := s.lifecycle.History(ctx, s.tenantID, orderID, shared.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
