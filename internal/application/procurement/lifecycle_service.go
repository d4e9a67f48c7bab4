package procurementapp

import (
	"context"
	"fmt"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultMaxBulkOrders bounds one bulk status request
const DefaultMaxBulkOrders = 100

// LifecycleService applies status transitions to existing purchase orders.
// Every transition loads, mutates and persists the order inside one
// transaction; persistence is a compare-and-swap on status and version.
type LifecycleService struct {
	orderRepo      procurement.PurchaseOrderRepository
	historyRepo    procurement.StatusHistoryRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ProcurementMetrics
	logger         *zap.Logger
	approval       procurement.ApprovalPolicy
	maxBulk        int
}

// LifecycleOption configures a LifecycleService
type LifecycleOption func(*LifecycleService)

// WithApprovalThreshold sets the gross total above which submit routes to approval.
// Zero disables routing.
func WithApprovalThreshold(threshold decimal.Decimal) LifecycleOption {
	return func(s *LifecycleService) {
		s.approval.Threshold = threshold
	}
}

// WithApprovalAlwaysRequired sends every submitted order to approval
// regardless of its total
func WithApprovalAlwaysRequired(always bool) LifecycleOption {
	return func(s *LifecycleService) {
		s.approval.Always = always
	}
}

// WithMaxBulkOrders overrides the bulk request size limit
func WithMaxBulkOrders(n int) LifecycleOption {
	return func(s *LifecycleService) {
		if n > 0 {
			s.maxBulk = n
		}
	}
}

// WithLifecycleLogger sets the logger
func WithLifecycleLogger(logger *zap.Logger) LifecycleOption {
	return func(s *LifecycleService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	orderRepo procurement.PurchaseOrderRepository,
	historyRepo procurement.StatusHistoryRepository,
	txScope TransactionScope,
	opts ...LifecycleOption,
) *LifecycleService {
	s := &LifecycleService{
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		txScope:     txScope,
		logger:      zap.NewNop(),
		approval:    procurement.DefaultApprovalPolicy,
		maxBulk:     DefaultMaxBulkOrders,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LifecycleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the procurement metrics collector
func (s *LifecycleService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.metrics = m
}

// GetByID retrieves a purchase order with its lines
func (s *LifecycleService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *LifecycleService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderListItem, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := procurement.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		SupplierID:  filter.SupplierID,
		WarehouseID: filter.WarehouseID,
		Currency:    filter.Currency,
	}
	if filter.Status != "" {
		status := procurement.OrderStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, procurement.NewValidationError("status", fmt.Sprintf("Unknown status %q", filter.Status))
		}
		domainFilter.Status = status
	}

	orders, total, err := s.orderRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PurchaseOrderListItem, len(orders))
	for i := range orders {
		items[i] = ToPurchaseOrderListItem(&orders[i])
	}
	return items, total, nil
}

// History lists the status history of an order, newest first
func (s *LifecycleService) History(ctx context.Context, tenantID, orderID uuid.UUID, filter shared.Filter) ([]StatusHistoryResponse, int64, error) {
	if _, err := s.orderRepo.FindByID(ctx, tenantID, orderID); err != nil {
		return nil, 0, err
	}
	entries, total, err := s.historyRepo.ListByOrder(ctx, tenantID, orderID, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]StatusHistoryResponse, len(entries))
	for i := range entries {
		items[i] = ToStatusHistoryResponse(&entries[i])
	}
	return items, total, nil
}

// Submit submits a draft or rejected order
func (s *LifecycleService) Submit(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actorID, procurement.ActionSubmit, func(o *procurement.PurchaseOrder, actor uuid.UUID) error {
		return o.Submit(actor, s.approval)
	})
}

// RouteForApproval moves a submitted order to pending approval
func (s *LifecycleService) RouteForApproval(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actorID, procurement.ActionRoute, func(o *procurement.PurchaseOrder, actor uuid.UUID) error {
		return o.RouteForApproval(actor)
	})
}

// Approve approves a pending order
func (s *LifecycleService) Approve(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req ApproveRequest) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actorID, procurement.ActionApprove, func(o *procurement.PurchaseOrder, actor uuid.UUID) error {
		return o.Approve(actor, req.Notes)
	})
}

// Reject rejects a pending order
func (s *LifecycleService) Reject(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req RejectRequest) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actorID, procurement.ActionReject, func(o *procurement.PurchaseOrder, actor uuid.UUID) error {
		return o.Reject(actor, req.Reason)
	})
}

// Reopen moves a rejected order back to draft
func (s *LifecycleService) Reopen(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actorID, procurement.ActionReopen, func(o *procurement.PurchaseOrder, actor uuid.UUID) error {
		return o.Reopen(actor)
	})
}

// Confirm confirms an approved order
func (s *LifecycleService) Confirm(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actorID, procurement.ActionConfirm, func(o *procurement.PurchaseOrder, actor uuid.UUID) error {
		return o.Confirm(actor)
	})
}

// RecordReceipt stores receipt progress reported by receiving
func (s *LifecycleService) RecordReceipt(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req ReceiptRequest) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actorID, procurement.ActionReceipt, func(o *procurement.PurchaseOrder, actor uuid.UUID) error {
		return o.RecordReceipt(actor, req.ReceivePercent)
	})
}

// Close closes a fully received order
func (s *LifecycleService) Close(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actorID, procurement.ActionClose, func(o *procurement.PurchaseOrder, actor uuid.UUID) error {
		return o.Close(actor)
	})
}

// Cancel cancels an order that has not received goods
func (s *LifecycleService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req CancelRequest) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actorID, procurement.ActionCancel, func(o *procurement.PurchaseOrder, actor uuid.UUID) error {
		return o.Cancel(actor, req.Reason)
	})
}

// Delete removes a draft order
func (s *LifecycleService) Delete(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) error {
	if actorID == nil || *actorID == uuid.Nil {
		return procurement.ErrUnauthenticated
	}
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := order.EnsureDeletable(); err != nil {
			return err
		}
		if err := repos.OrderRepo().Delete(ctx, tenantID, orderID); err != nil {
			return err
		}
		s.logger.Info("Purchase order deleted",
			zap.String("tenant_id", tenantID.String()),
			zap.String("order_id", orderID.String()),
			zap.String("order_number", order.OrderNumber),
		)
		return nil
	})
}

type transitionFunc func(o *procurement.PurchaseOrder, actor uuid.UUID) error

func (s *LifecycleService) transition(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, action procurement.Action, apply transitionFunc) (*PurchaseOrderResponse, error) {
	if actorID == nil || *actorID == uuid.Nil {
		return nil, procurement.ErrUnauthenticated
	}

	ctx, span := telemetry.StartSpan(ctx, "purchase_order."+action.String(),
		telemetry.AttrTenantID.String(tenantID.String()),
		telemetry.AttrOrderID.String(orderID.String()),
	)
	var order *procurement.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := apply(o, *actorID); err != nil {
			return err
		}
		if err := repos.OrderRepo().ApplyTransition(ctx, o); err != nil {
			return err
		}
		if err := repos.HistoryRepo().Append(ctx, procurement.NewHistoryEntry(o, o.LastTransition())); err != nil {
			return fmt.Errorf("append status history: %w", err)
		}
		order = o
		return nil
	})
	telemetry.EndSpan(span, err)

	if s.metrics != nil {
		s.metrics.RecordTransition(ctx, tenantID, action.String(), outcomeOf(err))
	}
	if err != nil {
		return nil, err
	}

	t := order.LastTransition()
	s.logger.Info("Purchase order status changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("action", action.String()),
		zap.String("from_status", t.FromStatus.String()),
		zap.String("to_status", t.ToStatus.String()),
	)

	publishAfterCommit(ctx, s.eventPublisher, s.logger, order)
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// BulkValidate reports which orders the action could be applied to without
// changing anything
func (s *LifecycleService) BulkValidate(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req BulkStatusRequest) (*BulkStatusResponse, error) {
	if err := s.validateBulk(actorID, req); err != nil {
		return nil, err
	}

	resp := &BulkStatusResponse{Action: req.Action, DryRun: true, Results: make([]BulkItemResult, 0, len(req.OrderIDs))}
	for _, id := range req.OrderIDs {
		order, err := s.orderRepo.FindByID(ctx, tenantID, id)
		if err != nil {
			resp.add(failedItem(id, "", err))
			continue
		}
		// apply to a copy so the dry run leaves the loaded order untouched
		probe := *order
		if err := s.applyBulk(&probe, *actorID, req); err != nil {
			resp.add(failedItem(id, order.OrderNumber, err))
			continue
		}
		resp.add(BulkItemResult{OrderID: id, OrderNumber: order.OrderNumber, Success: true, Status: probe.Status.String()})
	}
	return resp, nil
}

// BulkStatus applies the action to each order independently.
// One order failing does not affect the others.
func (s *LifecycleService) BulkStatus(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req BulkStatusRequest) (*BulkStatusResponse, error) {
	if err := s.validateBulk(actorID, req); err != nil {
		return nil, err
	}

	resp := &BulkStatusResponse{Action: req.Action, Results: make([]BulkItemResult, 0, len(req.OrderIDs))}
	for _, id := range req.OrderIDs {
		updated, err := s.transition(ctx, tenantID, id, actorID, bulkDomainAction(req.Action), func(o *procurement.PurchaseOrder, actor uuid.UUID) error {
			return s.applyBulk(o, actor, req)
		})
		if err != nil {
			resp.add(failedItem(id, "", err))
			continue
		}
		resp.add(BulkItemResult{OrderID: id, OrderNumber: updated.Number, Success: true, Status: updated.Status})
	}

	s.logger.Info("Bulk status update finished",
		zap.String("tenant_id", tenantID.String()),
		zap.String("action", string(req.Action)),
		zap.Int("success_count", resp.SuccessCount),
		zap.Int("error_count", resp.ErrorCount),
	)
	return resp, nil
}

func (s *LifecycleService) validateBulk(actorID *uuid.UUID, req BulkStatusRequest) error {
	if actorID == nil || *actorID == uuid.Nil {
		return procurement.ErrUnauthenticated
	}
	if !req.Action.IsValid() {
		return procurement.NewValidationError("action", fmt.Sprintf("Unsupported bulk action %q", req.Action))
	}
	if len(req.OrderIDs) == 0 {
		return procurement.NewValidationError("order_ids", "At least one order id is required")
	}
	if len(req.OrderIDs) > s.maxBulk {
		return procurement.NewValidationError("order_ids", fmt.Sprintf("A bulk request cannot exceed %d orders", s.maxBulk))
	}
	return nil
}

func (s *LifecycleService) applyBulk(o *procurement.PurchaseOrder, actor uuid.UUID, req BulkStatusRequest) error {
	switch req.Action {
	case BulkActionApprove:
		return o.Approve(actor, req.Notes)
	case BulkActionReject:
		return o.Reject(actor, req.Reason)
	case BulkActionConfirm:
		return o.Confirm(actor)
	case BulkActionCancel:
		return o.Cancel(actor, req.Reason)
	}
	return procurement.NewValidationError("action", fmt.Sprintf("Unsupported bulk action %q", req.Action))
}

func bulkDomainAction(a BulkAction) procurement.Action {
	switch a {
	case BulkActionApprove:
		return procurement.ActionApprove
	case BulkActionReject:
		return procurement.ActionReject
	case BulkActionConfirm:
		return procurement.ActionConfirm
	default:
		return procurement.ActionCancel
	}
}

func failedItem(id uuid.UUID, number string, err error) BulkItemResult {
	return BulkItemResult{OrderID: id, OrderNumber: number, Error: err.Error(), ErrorCode: errorCodeOf(err)}
}
