package handler

import (
	"context"

	procurementapp "github.com/erp/procurement/internal/application/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockQuickEntry implements QuickEntryCreator for testing
type MockQuickEntry struct {
	mock.Mock
}

func (m *MockQuickEntry) Create(ctx context.Context, tenantID uuid.UUID, requesterID *uuid.UUID, req procurementapp.QuickEntryRequest) (*procurementapp.QuickEntryResponse, error) {
	args := m.Called(ctx, tenantID, requesterID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.QuickEntryResponse), args.Error(1)
}

// MockLifecycle implements OrderLifecycle for testing
type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) order(args mock.Arguments) (*procurementapp.PurchaseOrderResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.PurchaseOrderResponse), args.Error(1)
}

func (m *MockLifecycle) bulk(args mock.Arguments) (*procurementapp.BulkStatusResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.BulkStatusResponse), args.Error(1)
}

func (m *MockLifecycle) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
	return m.order(m.Called(ctx, tenantID, orderID))
}

func (m *MockLifecycle) List(ctx context.Context, tenantID uuid.UUID, filter procurementapp.PurchaseOrderListFilter) ([]procurementapp.PurchaseOrderListItem, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]procurementapp.PurchaseOrderListItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockLifecycle) History(ctx context.Context, tenantID, orderID uuid.UUID, filter shared.Filter) ([]procurementapp.StatusHistoryResponse, int64, error) {
	args := m.Called(ctx, tenantID, orderID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]procurementapp.StatusHistoryResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockLifecycle) Submit(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
	return m.order(m.Called(ctx, tenantID, orderID, actorID))
}

func (m *MockLifecycle) RouteForApproval(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
	return m.order(m.Called(ctx, tenantID, orderID, actorID))
}

func (m *MockLifecycle) Approve(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req procurementapp.ApproveRequest) (*procurementapp.PurchaseOrderResponse, error) {
	return m.order(m.Called(ctx, tenantID, orderID, actorID, req))
}

func (m *MockLifecycle) Reject(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req procurementapp.RejectRequest) (*procurementapp.PurchaseOrderResponse, error) {
	return m.order(m.Called(ctx, tenantID, orderID, actorID, req))
}

func (m *MockLifecycle) Reopen(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
	return m.order(m.Called(ctx, tenantID, orderID, actorID))
}

func (m *MockLifecycle) Confirm(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
	return m.order(m.Called(ctx, tenantID, orderID, actorID))
}

func (m *MockLifecycle) RecordReceipt(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req procurementapp.ReceiptRequest) (*procurementapp.PurchaseOrderResponse, error) {
	return m.order(m.Called(ctx, tenantID, orderID, actorID, req))
}

func (m *MockLifecycle) Close(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
	return m.order(m.Called(ctx, tenantID, orderID, actorID))
}

func (m *MockLifecycle) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req procurementapp.CancelRequest) (*procurementapp.PurchaseOrderResponse, error) {
	return m.order(m.Called(ctx, tenantID, orderID, actorID, req))
}

func (m *MockLifecycle) Delete(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) error {
	return m.Called(ctx, tenantID, orderID, actorID).Error(0)
}

func (m *MockLifecycle) BulkValidate(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req procurementapp.BulkStatusRequest) (*procurementapp.BulkStatusResponse, error) {
	return m.bulk(m.Called(ctx, tenantID, actorID, req))
}

func (m *MockLifecycle) BulkStatus(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req procurementapp.BulkStatusRequest) (*procurementapp.BulkStatusResponse, error) {
	return m.bulk(m.Called(ctx, tenantID, actorID, req))
}

// MockImporter implements OrderImporter for testing
type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Validate(ctx context.Context, tenantID uuid.UUID, filename string, data []byte) (*procurementapp.ImportValidationResponse, error) {
	args := m.Called(ctx, tenantID, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.ImportValidationResponse), args.Error(1)
}

func (m *MockImporter) Execute(ctx context.Context, tenantID uuid.UUID, requesterID, warehouseID *uuid.UUID, filename string, data []byte) (*procurementapp.ImportExecuteResponse, error) {
	args := m.Called(ctx, tenantID, requesterID, warehouseID, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.ImportExecuteResponse), args.Error(1)
}
