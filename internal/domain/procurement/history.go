package procurement

import (
	"time"

	"github.com/google/uuid"
)

// StatusHistoryEntry is one row of an order's audit trail
type StatusHistoryEntry struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	OrderID    uuid.UUID
	Action     Action
	FromStatus OrderStatus
	ToStatus   OrderStatus
	ActorID    uuid.UUID
	Note       string
	OccurredAt time.Time
}

// NewHistoryEntry builds the audit row for a transition
func NewHistoryEntry(order *PurchaseOrder, t *Transition) *StatusHistoryEntry {
	return &StatusHistoryEntry{
		ID:         uuid.New(),
		TenantID:   order.TenantID,
		OrderID:    order.ID,
		Action:     t.Action,
		FromStatus: t.FromStatus,
		ToStatus:   t.ToStatus,
		ActorID:    t.ActorID,
		Note:       t.Note,
		OccurredAt: t.OccurredAt,
	}
}

// NewCreationHistoryEntry builds the audit row written with a new order
func NewCreationHistoryEntry(order *PurchaseOrder) *StatusHistoryEntry {
	entry := &StatusHistoryEntry{
		ID:         uuid.New(),
		TenantID:   order.TenantID,
		OrderID:    order.ID,
		Action:     ActionCreate,
		ToStatus:   order.Status,
		OccurredAt: order.CreatedAt,
	}
	if order.CreatedBy != nil {
		entry.ActorID = *order.CreatedBy
	}
	return entry
}
