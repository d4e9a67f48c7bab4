package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ProcurementMetrics records quick-entry, lifecycle and import activity
type ProcurementMetrics struct {
	logger *zap.Logger

	quickEntryTotal    *Counter
	quickEntryDuration *Histogram
	quickEntryLines    *Histogram
	ordersCreated      *Counter
	orderGross         *Histogram
	transitionsTotal   *Counter
	importsTotal       *Counter
	importRows         *Counter
}

// NewProcurementMetrics registers the procurement instruments on meter
func NewProcurementMetrics(meter metric.Meter, logger *zap.Logger) (*ProcurementMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &ProcurementMetrics{logger: logger}

	var err error
	if m.quickEntryTotal, err = NewCounter(meter, "procurement_quick_entry_total",
		"Quick-entry batches by outcome", "{batches}"); err != nil {
		return nil, err
	}
	if m.quickEntryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "procurement_quick_entry_duration_seconds",
		Description: "Time to resolve, consolidate and persist a quick-entry batch",
		Unit:        "s",
		Boundaries:  PipelineDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.quickEntryLines, err = NewHistogram(meter, HistogramOpts{
		Name:        "procurement_quick_entry_lines",
		Description: "Entries per quick-entry batch",
		Unit:        "{lines}",
		Boundaries:  BatchSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if m.ordersCreated, err = NewCounter(meter, "procurement_orders_created_total",
		"Purchase orders created", "{orders}"); err != nil {
		return nil, err
	}
	if m.orderGross, err = NewHistogram(meter, HistogramOpts{
		Name:        "procurement_order_gross_total",
		Description: "Gross value of created purchase orders in order currency",
		Unit:        "{currency}",
	}); err != nil {
		return nil, err
	}
	if m.transitionsTotal, err = NewCounter(meter, "procurement_status_transitions_total",
		"Lifecycle actions by outcome", "{transitions}"); err != nil {
		return nil, err
	}
	if m.importsTotal, err = NewCounter(meter, "procurement_imports_total",
		"File import requests by phase and outcome", "{imports}"); err != nil {
		return nil, err
	}
	if m.importRows, err = NewCounter(meter, "procurement_import_rows_total",
		"Rows read from import files", "{rows}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordQuickEntry records one quick-entry batch
func (m *ProcurementMetrics) RecordQuickEntry(ctx context.Context, tenantID uuid.UUID, outcome string, lines, orders int, d time.Duration) {
	tenant := AttrTenantID.String(tenantID.String())
	m.quickEntryTotal.Inc(ctx, tenant, AttrOutcome.String(outcome))
	m.quickEntryDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
	m.quickEntryLines.Record(ctx, float64(lines), tenant)
	m.logger.Debug("Quick entry recorded",
		zap.String("outcome", outcome),
		zap.Int("lines", lines),
		zap.Int("orders", orders),
	)
}

// RecordOrderCreated records one created order
func (m *ProcurementMetrics) RecordOrderCreated(ctx context.Context, tenantID uuid.UUID, currency string, gross decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrTenantID.String(tenantID.String()), AttrCurrency.String(currency)}
	m.ordersCreated.Inc(ctx, attrs...)
	m.orderGross.Record(ctx, gross.InexactFloat64(), attrs...)
}

// RecordTransition records one lifecycle action
func (m *ProcurementMetrics) RecordTransition(ctx context.Context, tenantID uuid.UUID, action, outcome string) {
	m.transitionsTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrAction.String(action),
		AttrOutcome.String(outcome),
	)
}

// RecordImport records one import request
func (m *ProcurementMetrics) RecordImport(ctx context.Context, tenantID uuid.UUID, phase, outcome string, rows int) {
	tenant := AttrTenantID.String(tenantID.String())
	m.importsTotal.Inc(ctx, tenant, AttrPhase.String(phase), AttrOutcome.String(outcome))
	if rows > 0 {
		m.importRows.Add(ctx, int64(rows), tenant, AttrPhase.String(phase))
	}
}
