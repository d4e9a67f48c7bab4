package event

import "github.com/erp/procurement/internal/domain/procurement"

// RegisterProcurementEvents registers the purchase order events
func RegisterProcurementEvents(s *EventSerializer) {
	s.Register(procurement.EventTypePurchaseOrderCreated, &procurement.PurchaseOrderCreatedEvent{})
	s.Register(procurement.EventTypePurchaseOrderStatusChanged, &procurement.PurchaseOrderStatusChangedEvent{})
	s.Register(procurement.EventTypePurchaseOrderCancelled, &procurement.PurchaseOrderCancelledEvent{})
}
