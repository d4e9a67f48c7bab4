package procurement

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
	EventTypePurchaseOrderCancelled     = "PurchaseOrderCancelled"
)

// PurchaseOrderCreatedEvent is raised when quick entry creates an order
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Currency     string          `json:"currency"`
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	TotalLines   int             `json:"total_lines"`
	NetTotal     decimal.Decimal `json:"net_total"`
	VATTotal     decimal.Decimal `json:"vat_total"`
	GrossTotal   decimal.Decimal `json:"gross_total"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
		SupplierName:    order.SupplierName,
		Currency:        order.Currency.String(),
		WarehouseID:     order.WarehouseID,
		TotalLines:      order.TotalLines(),
		NetTotal:        order.NetTotal,
		VATTotal:        order.VATTotal,
		GrossTotal:      order.GrossTotal,
	}
}

// PurchaseOrderStatusChangedEvent is raised for every lifecycle action
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	Action         string          `json:"action"`
	FromStatus     string          `json:"from_status"`
	ToStatus       string          `json:"to_status"`
	ActorID        uuid.UUID       `json:"actor_id"`
	ReceivePercent decimal.Decimal `json:"receive_percent"`
}

// NewPurchaseOrderStatusChangedEvent creates a new PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(order *PurchaseOrder, t *Transition) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Action:          t.Action.String(),
		FromStatus:      t.FromStatus.String(),
		ToStatus:        t.ToStatus.String(),
		ActorID:         t.ActorID,
		ReceivePercent:  order.ReceivePercent,
	}
}

// PurchaseOrderCancelledEvent is raised when an order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	SupplierID  uuid.UUID `json:"supplier_id"`
	FromStatus  string    `json:"from_status"`
	Reason      string    `json:"reason"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(order *PurchaseOrder, from OrderStatus) *PurchaseOrderCancelledEvent {
	e := &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
		FromStatus:      from.String(),
		Reason:          order.CancelReason,
	}
	if order.CancelledBy != nil {
		e.CancelledBy = *order.CancelledBy
	}
	return e
}
