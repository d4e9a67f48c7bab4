package procurementapp

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxBatchLines bounds one quick-entry submission
const DefaultMaxBatchLines = 500

// QuickEntryService consolidates quick-entry lines into draft purchase orders.
//
// Validation order is fixed: warehouse presence, requester, batch size,
// line resolution, aggregation, partitioning, persistence. A missing
// warehouse returns before any collaborator is called.
type QuickEntryService struct {
	resolver       *procurement.LineResolver
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ProcurementMetrics
	logger         *zap.Logger
	maxLines       int
	now            func() time.Time
}

// QuickEntryOption configures a QuickEntryService
type QuickEntryOption func(*QuickEntryService)

// WithMaxBatchLines overrides the per-batch line limit
func WithMaxBatchLines(n int) QuickEntryOption {
	return func(s *QuickEntryService) {
		if n > 0 {
			s.maxLines = n
		}
	}
}

// WithQuickEntryClock overrides the clock used for the order number year
func WithQuickEntryClock(now func() time.Time) QuickEntryOption {
	return func(s *QuickEntryService) {
		s.now = now
	}
}

// WithQuickEntryLogger sets the logger
func WithQuickEntryLogger(logger *zap.Logger) QuickEntryOption {
	return func(s *QuickEntryService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewQuickEntryService creates a new QuickEntryService
func NewQuickEntryService(resolver *procurement.LineResolver, txScope TransactionScope, opts ...QuickEntryOption) *QuickEntryService {
	s := &QuickEntryService{
		resolver: resolver,
		txScope:  txScope,
		logger:   zap.NewNop(),
		maxLines: DefaultMaxBatchLines,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *QuickEntryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the procurement metrics collector
func (s *QuickEntryService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.metrics = m
}

// Create runs the consolidation pipeline for a quick-entry request
func (s *QuickEntryService) Create(ctx context.Context, tenantID uuid.UUID, requesterID *uuid.UUID, req QuickEntryRequest) (*QuickEntryResponse, error) {
	return s.CreateFromEntries(ctx, tenantID, requesterID, req.WarehouseID, req.ToEntries())
}

// CreateFromEntries runs the consolidation pipeline for already parsed entries.
// Either every order is committed or none is.
func (s *QuickEntryService) CreateFromEntries(ctx context.Context, tenantID uuid.UUID, requesterID, warehouseID *uuid.UUID, entries []procurement.ProductEntry) (*QuickEntryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "quick_entry.create",
		telemetry.AttrTenantID.String(tenantID.String()))
	start := time.Now()
	resp, err := s.create(ctx, tenantID, requesterID, warehouseID, entries)
	telemetry.EndSpan(span, err)

	if s.metrics != nil {
		orders := 0
		if resp != nil {
			orders = len(resp.PurchaseOrders)
		}
		s.metrics.RecordQuickEntry(ctx, tenantID, outcomeOf(err), len(entries), orders, time.Since(start))
	}
	if err != nil {
		s.logger.Info("Quick entry rejected",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("lines", len(entries)),
			zap.String("error_code", errorCodeOf(err)),
			zap.Error(err),
		)
	}
	return resp, err
}

func (s *QuickEntryService) create(ctx context.Context, tenantID uuid.UUID, requesterID, warehouseID *uuid.UUID, entries []procurement.ProductEntry) (*QuickEntryResponse, error) {
	if warehouseID == nil || *warehouseID == uuid.Nil {
		return nil, procurement.ErrWarehouseRequired
	}
	if requesterID == nil || *requesterID == uuid.Nil {
		return nil, procurement.ErrUnauthenticated
	}
	if len(entries) == 0 {
		return nil, procurement.NewValidationError("lines", "At least one line is required")
	}
	if len(entries) > s.maxLines {
		return nil, procurement.NewValidationError("lines",
			fmt.Sprintf("A quick entry batch cannot exceed %d lines", s.maxLines))
	}

	candidates, err := s.resolver.ResolveAll(ctx, tenantID, entries)
	if err != nil {
		return nil, err
	}
	lines, err := procurement.Aggregate(candidates)
	if err != nil {
		return nil, err
	}
	groups := procurement.Partition(lines)

	var orders []*procurement.PurchaseOrder
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		factory := procurement.NewOrderFactory(repos.NumberAllocator(), repos.OrderRepo(), repos.HistoryRepo()).WithNow(s.now)
		created, err := factory.CreateOrders(ctx, tenantID, groups, *warehouseID, *requesterID)
		if err != nil {
			return err
		}
		orders = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &QuickEntryResponse{PurchaseOrders: make([]CreatedOrderSummary, 0, len(orders))}
	for _, o := range orders {
		resp.PurchaseOrders = append(resp.PurchaseOrders, ToCreatedOrderSummary(o))
		s.logger.Info("Purchase order created",
			zap.String("tenant_id", tenantID.String()),
			zap.String("order_id", o.ID.String()),
			zap.String("order_number", o.OrderNumber),
			zap.String("currency", o.Currency.String()),
			zap.Int("lines", o.TotalLines()),
		)
		if s.metrics != nil {
			s.metrics.RecordOrderCreated(ctx, tenantID, o.Currency.String(), o.GrossTotal)
		}
	}

	publishAfterCommit(ctx, s.eventPublisher, s.logger, orderAggregates(orders)...)
	return resp, nil
}

func orderAggregates(orders []*procurement.PurchaseOrder) []shared.AggregateRoot {
	out := make([]shared.AggregateRoot, len(orders))
	for i, o := range orders {
		out[i] = o
	}
	return out
}

// publishAfterCommit publishes and clears pending events. Failures are
// logged; the state change is already committed.
func publishAfterCommit(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggregates ...shared.AggregateRoot) {
	var events []shared.DomainEvent
	for _, a := range aggregates {
		events = append(events, a.GetDomainEvents()...)
		a.ClearDomainEvents()
	}
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish purchase order events",
			zap.Int("events", len(events)),
			zap.Error(err),
		)
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	return errorCodeOf(err)
}

func errorCodeOf(err error) string {
	if de, ok := shared.AsDomainError(err); ok {
		return de.Code
	}
	return "INTERNAL_ERROR"
}
