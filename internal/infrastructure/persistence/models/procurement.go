package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	TenantAggregateModel
	OrderNumber     string                   `gorm:"type:varchar(30);not null;uniqueIndex:idx_purchase_order_tenant_number,priority:2"`
	SupplierID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	SupplierName    string                   `gorm:"type:varchar(200);not null"`
	Currency        string                   `gorm:"type:char(3);not null"`
	WarehouseID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	Status          procurement.OrderStatus  `gorm:"type:varchar(20);not null;default:'draft';index"`
	Lines           []PurchaseOrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
	NetTotal        decimal.Decimal          `gorm:"type:numeric;not null;default:0"`
	VATTotal        decimal.Decimal          `gorm:"column:vat_total;type:numeric;not null;default:0"`
	GrossTotal      decimal.Decimal          `gorm:"type:numeric;not null;default:0"`
	ReceivePercent  decimal.Decimal          `gorm:"type:numeric;not null;default:0"`
	SubmittedAt     *time.Time
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	ApprovalNotes   string     `gorm:"type:text"`
	RejectedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectedAt      *time.Time
	RejectionReason string `gorm:"type:text"`
	ConfirmedAt     *time.Time
	ClosedAt        *time.Time
	CancelledBy     *uuid.UUID `gorm:"type:uuid"`
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
// Lines are only present when they were preloaded.
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	order := &procurement.PurchaseOrder{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		OrderNumber:         m.OrderNumber,
		SupplierID:          m.SupplierID,
		SupplierName:        m.SupplierName,
		Currency:            valueobject.Currency(m.Currency),
		WarehouseID:         m.WarehouseID,
		Status:              m.Status,
		NetTotal:            m.NetTotal,
		VATTotal:            m.VATTotal,
		GrossTotal:          m.GrossTotal,
		ReceivePercent:      m.ReceivePercent,
		SubmittedAt:         m.SubmittedAt,
		ApprovedBy:          m.ApprovedBy,
		ApprovedAt:          m.ApprovedAt,
		ApprovalNotes:       m.ApprovalNotes,
		RejectedBy:          m.RejectedBy,
		RejectedAt:          m.RejectedAt,
		RejectionReason:     m.RejectionReason,
		ConfirmedAt:         m.ConfirmedAt,
		ClosedAt:            m.ClosedAt,
		CancelledBy:         m.CancelledBy,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		Lines:               make([]procurement.POLine, len(m.Lines)),
	}
	for i := range m.Lines {
		order.Lines[i] = m.Lines[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder.
func (m *PurchaseOrderModel) FromDomain(o *procurement.PurchaseOrder) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.Currency = o.Currency.String()
	m.WarehouseID = o.WarehouseID
	m.Status = o.Status
	m.NetTotal = o.NetTotal
	m.VATTotal = o.VATTotal
	m.GrossTotal = o.GrossTotal
	m.ReceivePercent = o.ReceivePercent
	m.SubmittedAt = o.SubmittedAt
	m.ApprovedBy = o.ApprovedBy
	m.ApprovedAt = o.ApprovedAt
	m.ApprovalNotes = o.ApprovalNotes
	m.RejectedBy = o.RejectedBy
	m.RejectedAt = o.RejectedAt
	m.RejectionReason = o.RejectionReason
	m.ConfirmedAt = o.ConfirmedAt
	m.ClosedAt = o.ClosedAt
	m.CancelledBy = o.CancelledBy
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Lines = make([]PurchaseOrderLineModel, len(o.Lines))
	for i := range o.Lines {
		m.Lines[i] = PurchaseOrderLineModelFromDomain(o.ID, &o.Lines[i])
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(o *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// TransitionColumns returns the columns a lifecycle transition may change
func (m *PurchaseOrderModel) TransitionColumns() map[string]any {
	return map[string]any{
		"status":           m.Status,
		"receive_percent":  m.ReceivePercent,
		"submitted_at":     m.SubmittedAt,
		"approved_by":      m.ApprovedBy,
		"approved_at":      m.ApprovedAt,
		"approval_notes":   m.ApprovalNotes,
		"rejected_by":      m.RejectedBy,
		"rejected_at":      m.RejectedAt,
		"rejection_reason": m.RejectionReason,
		"confirmed_at":     m.ConfirmedAt,
		"closed_at":        m.ClosedAt,
		"cancelled_by":     m.CancelledBy,
		"cancelled_at":     m.CancelledAt,
		"cancel_reason":    m.CancelReason,
		"version":          m.Version,
		"updated_at":       m.UpdatedAt,
	}
}

// PurchaseOrderLineModel is the persistence model for one order line.
type PurchaseOrderLineModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_purchase_order_line_no,priority:1"`
	LineNo         int             `gorm:"not null;uniqueIndex:idx_purchase_order_line_no,priority:2"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode    string          `gorm:"type:varchar(50);not null"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	UOM            string          `gorm:"column:uom;type:varchar(20);not null"`
	Quantity       decimal.Decimal `gorm:"type:numeric;not null"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric;not null"`
	TaxRatePercent decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	LineNet        decimal.Decimal `gorm:"type:numeric;not null"`
	LineTax        decimal.Decimal `gorm:"type:numeric;not null"`
	LineGross      decimal.Decimal `gorm:"type:numeric;not null"`
	Notes          string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// ToDomain converts the persistence model to a domain POLine.
func (m *PurchaseOrderLineModel) ToDomain() procurement.POLine {
	return procurement.POLine{
		ID:             m.ID,
		LineNo:         m.LineNo,
		ProductID:      m.ProductID,
		ProductCode:    m.ProductCode,
		ProductName:    m.ProductName,
		UOM:            m.UOM,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		TaxRatePercent: m.TaxRatePercent,
		LineNet:        m.LineNet,
		LineTax:        m.LineTax,
		LineGross:      m.LineGross,
		Notes:          m.Notes,
	}
}

// PurchaseOrderLineModelFromDomain creates a new persistence model from a domain POLine.
func PurchaseOrderLineModelFromDomain(orderID uuid.UUID, l *procurement.POLine) PurchaseOrderLineModel {
	return PurchaseOrderLineModel{
		ID:             l.ID,
		OrderID:        orderID,
		LineNo:         l.LineNo,
		ProductID:      l.ProductID,
		ProductCode:    l.ProductCode,
		ProductName:    l.ProductName,
		UOM:            l.UOM,
		Quantity:       l.Quantity,
		UnitPrice:      l.UnitPrice,
		TaxRatePercent: l.TaxRatePercent,
		LineNet:        l.LineNet,
		LineTax:        l.LineTax,
		LineGross:      l.LineGross,
		Notes:          l.Notes,
	}
}

// StatusHistoryModel is one append-only audit row.
// FromStatus is NULL for the creation row.
type StatusHistoryModel struct {
	ID         uuid.UUID                `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID                `gorm:"type:uuid;not null;index"`
	OrderID    uuid.UUID                `gorm:"type:uuid;not null;index:idx_status_history_order,priority:1"`
	Action     procurement.Action       `gorm:"type:varchar(30);not null"`
	FromStatus *procurement.OrderStatus `gorm:"type:varchar(20)"`
	ToStatus   procurement.OrderStatus  `gorm:"type:varchar(20);not null"`
	ActorID    uuid.UUID                `gorm:"type:uuid;not null"`
	Note       string                   `gorm:"type:text"`
	OccurredAt time.Time                `gorm:"not null;index:idx_status_history_order,priority:2"`
}

// TableName returns the table name for GORM
func (StatusHistoryModel) TableName() string {
	return "purchase_order_status_history"
}

// ToDomain converts the persistence model to a domain StatusHistoryEntry.
func (m *StatusHistoryModel) ToDomain() procurement.StatusHistoryEntry {
	e := procurement.StatusHistoryEntry{
		ID:         m.ID,
		TenantID:   m.TenantID,
		OrderID:    m.OrderID,
		Action:     m.Action,
		ToStatus:   m.ToStatus,
		ActorID:    m.ActorID,
		Note:       m.Note,
		OccurredAt: m.OccurredAt,
	}
	if m.FromStatus != nil {
		e.FromStatus = *m.FromStatus
	}
	return e
}

// StatusHistoryModelFromDomain creates a new persistence model from a domain StatusHistoryEntry.
func StatusHistoryModelFromDomain(e *procurement.StatusHistoryEntry) *StatusHistoryModel {
	m := &StatusHistoryModel{
		ID:         e.ID,
		TenantID:   e.TenantID,
		OrderID:    e.OrderID,
		Action:     e.Action,
		ToStatus:   e.ToStatus,
		ActorID:    e.ActorID,
		Note:       e.Note,
		OccurredAt: e.OccurredAt,
	}
	if e.FromStatus != "" {
		from := e.FromStatus
		m.FromStatus = &from
	}
	return m
}

// OrderSequenceModel is the per-(tenant, year) order number counter
type OrderSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Year      int       `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderSequenceModel) TableName() string {
	return "purchase_order_sequences"
}
