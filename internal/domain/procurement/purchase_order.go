package procurement

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Text bounds for lifecycle notes
const (
	MaxNoteLength         = 1000
	MinRejectReasonLength = 10
)

// DefaultApprovalThreshold is the gross total above which submit routes to approval
var DefaultApprovalThreshold = decimal.NewFromInt(10000)

// ApprovalPolicy decides whether a submitted order waits for approval
type ApprovalPolicy struct {
	// Threshold is the gross total above which approval is needed; zero disables it
	Threshold decimal.Decimal
	// Always sends every submitted order to approval
	Always bool
}

// DefaultApprovalPolicy routes orders above DefaultApprovalThreshold
var DefaultApprovalPolicy = ApprovalPolicy{Threshold: DefaultApprovalThreshold}

// Requires reports whether an order with the given gross total needs approval
func (p ApprovalPolicy) Requires(gross decimal.Decimal) bool {
	if p.Always {
		return true
	}
	return p.Threshold.IsPositive() && gross.GreaterThan(p.Threshold)
}

// Transition records the last status change applied in memory.
// Repositories persist it as a compare-and-swap on (FromStatus, FromVersion).
type Transition struct {
	Action      Action
	FromStatus  OrderStatus
	ToStatus    OrderStatus
	FromVersion int
	ActorID     uuid.UUID
	Note        string
	OccurredAt  time.Time
}

// PurchaseOrder is the purchase order aggregate root.
// Lines are fixed at creation; later changes go through lifecycle actions.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber    string
	SupplierID     uuid.UUID
	SupplierName   string
	Currency       valueobject.Currency
	WarehouseID    uuid.UUID
	Status         OrderStatus
	Lines          []POLine
	NetTotal       decimal.Decimal
	VATTotal       decimal.Decimal
	GrossTotal     decimal.Decimal
	ReceivePercent decimal.Decimal

	SubmittedAt     *time.Time
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	ApprovalNotes   string
	RejectedBy      *uuid.UUID
	RejectedAt      *time.Time
	RejectionReason string
	ConfirmedAt     *time.Time
	ClosedAt        *time.Time
	CancelledBy     *uuid.UUID
	CancelledAt     *time.Time
	CancelReason    string

	lastTransition *Transition
}

// NewPurchaseOrder creates a draft order from a partition group
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber string, warehouseID, requesterID uuid.UUID, group OrderGroup) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, ErrWarehouseRequired
	}
	if requesterID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if group.SupplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if len(group.Lines) == 0 {
		return nil, NewValidationError("lines", "Order must have at least one line")
	}

	totals := ComputeTotals(group)
	order := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, requesterID),
		OrderNumber:         orderNumber,
		SupplierID:          group.SupplierID,
		SupplierName:        group.SupplierName,
		Currency:            group.Currency,
		WarehouseID:         warehouseID,
		Status:              StatusDraft,
		Lines:               totals.Lines,
		NetTotal:            totals.NetTotal,
		VATTotal:            totals.VATTotal,
		GrossTotal:          totals.GrossTotal,
		ReceivePercent:      decimal.Zero,
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// TotalLines returns the number of lines
func (o *PurchaseOrder) TotalLines() int {
	return len(o.Lines)
}

// TaxBreakdown returns net and tax per rate across the order's lines
func (o *PurchaseOrder) TaxBreakdown() []TaxBreakdown {
	return BreakdownByRate(o.Lines)
}

// IsEditable returns true if line content may change
func (o *PurchaseOrder) IsEditable() bool {
	return o.Status.IsEditable()
}

// CanCancel reports whether Cancel would succeed
func (o *PurchaseOrder) CanCancel() bool {
	return ActionCancel.AllowedFrom(o.Status) && o.ReceivePercent.IsZero()
}

// LastTransition returns the transition applied by the latest lifecycle call, if any
func (o *PurchaseOrder) LastTransition() *Transition {
	return o.lastTransition
}

// EnsureDeletable fails unless the order is a draft
func (o *PurchaseOrder) EnsureDeletable() error {
	if !o.IsEditable() {
		return NewOrderNotEditableError(o.ID, o.Status)
	}
	return nil
}

// Submit sends a draft or rejected order onward, to pending_approval when
// policy requires it and to submitted otherwise.
func (o *PurchaseOrder) Submit(actorID uuid.UUID, policy ApprovalPolicy) error {
	if !ActionSubmit.AllowedFrom(o.Status) {
		return NewIllegalTransitionError(o.ID, o.Status, ActionSubmit)
	}
	if len(o.Lines) == 0 {
		return NewValidationError("lines", "Cannot submit order without lines").WithDetail(DetailOrderID, o.ID.String())
	}

	target := StatusSubmitted
	if policy.Requires(o.GrossTotal) {
		target = StatusPendingApproval
	}

	t := o.apply(ActionSubmit, target, actorID, "")
	o.SubmittedAt = &t.OccurredAt
	return nil
}

// RouteForApproval moves a submitted order into the approval queue
func (o *PurchaseOrder) RouteForApproval(actorID uuid.UUID) error {
	if !ActionRoute.AllowedFrom(o.Status) {
		return NewIllegalTransitionError(o.ID, o.Status, ActionRoute)
	}
	o.apply(ActionRoute, StatusPendingApproval, actorID, "")
	return nil
}

// Approve approves a pending order
func (o *PurchaseOrder) Approve(approverID uuid.UUID, notes string) error {
	if !ActionApprove.AllowedFrom(o.Status) {
		return NewIllegalTransitionError(o.ID, o.Status, ActionApprove)
	}
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > MaxNoteLength {
		return NewValidationError("notes", "Approval notes cannot exceed 1000 characters").WithDetail(DetailOrderID, o.ID.String())
	}

	t := o.apply(ActionApprove, StatusApproved, approverID, notes)
	o.ApprovedBy = &approverID
	o.ApprovedAt = &t.OccurredAt
	o.ApprovalNotes = notes
	return nil
}

// Reject rejects a pending order. The reason must be 10 to 1000 characters
// once surrounding whitespace is ignored; it is stored as given.
func (o *PurchaseOrder) Reject(approverID uuid.UUID, reason string) error {
	if !ActionReject.AllowedFrom(o.Status) {
		return NewIllegalTransitionError(o.ID, o.Status, ActionReject)
	}
	n := utf8.RuneCountInString(strings.TrimSpace(reason))
	if n < MinRejectReasonLength || n > MaxNoteLength {
		return NewValidationError("reason", "Rejection reason must be between 10 and 1000 characters").WithDetail(DetailOrderID, o.ID.String())
	}

	t := o.apply(ActionReject, StatusRejected, approverID, reason)
	o.RejectedBy = &approverID
	o.RejectedAt = &t.OccurredAt
	o.RejectionReason = reason
	return nil
}

// Reopen returns a rejected order to draft
func (o *PurchaseOrder) Reopen(actorID uuid.UUID) error {
	if !ActionReopen.AllowedFrom(o.Status) {
		return NewIllegalTransitionError(o.ID, o.Status, ActionReopen)
	}
	o.apply(ActionReopen, StatusDraft, actorID, "")
	return nil
}

// Confirm confirms an approved order with the supplier
func (o *PurchaseOrder) Confirm(actorID uuid.UUID) error {
	if !ActionConfirm.AllowedFrom(o.Status) {
		return NewIllegalTransitionError(o.ID, o.Status, ActionConfirm)
	}
	t := o.apply(ActionConfirm, StatusConfirmed, actorID, "")
	o.ConfirmedAt = &t.OccurredAt
	return nil
}

// RecordReceipt stores the receipt progress reported by receiving.
// Percent is 0..100 and may not decrease. The first non-zero value moves a
// confirmed order to receiving.
func (o *PurchaseOrder) RecordReceipt(actorID uuid.UUID, percent decimal.Decimal) error {
	if !ActionReceipt.AllowedFrom(o.Status) {
		return NewIllegalTransitionError(o.ID, o.Status, ActionReceipt)
	}
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return NewValidationError("receive_percent", "Receive percent must be between 0 and 100").WithDetail(DetailOrderID, o.ID.String())
	}
	if percent.LessThan(o.ReceivePercent) {
		return NewValidationError("receive_percent", "Receive percent cannot decrease").WithDetail(DetailOrderID, o.ID.String())
	}

	target := o.Status
	if percent.IsPositive() {
		target = StatusReceiving
	}
	o.ReceivePercent = percent
	o.apply(ActionReceipt, target, actorID, percent.String())
	return nil
}

// Close closes a fully received order
func (o *PurchaseOrder) Close(actorID uuid.UUID) error {
	if !ActionClose.AllowedFrom(o.Status) {
		return NewIllegalTransitionError(o.ID, o.Status, ActionClose)
	}
	if !o.ReceivePercent.Equal(hundred) {
		return orderError(CodeIllegalTransition, o.ID,
			"Cannot close order with %s%% received", o.ReceivePercent.String()).
			WithDetail(DetailStatus, o.Status.String()).
			WithDetail(DetailAction, ActionClose.String())
	}
	t := o.apply(ActionClose, StatusClosed, actorID, "")
	o.ClosedAt = &t.OccurredAt
	return nil
}

// Cancel cancels the order. Terminal orders cannot be cancelled, and any
// receipt progress blocks cancellation.
func (o *PurchaseOrder) Cancel(actorID uuid.UUID, reason string) error {
	if o.Status.IsTerminal() {
		return NewIllegalTransitionError(o.ID, o.Status, ActionCancel)
	}
	if o.ReceivePercent.IsPositive() {
		return NewCancelBlockedError(o.ID, o.ReceivePercent.String())
	}
	if !ActionCancel.AllowedFrom(o.Status) {
		return NewIllegalTransitionError(o.ID, o.Status, ActionCancel)
	}
	if strings.TrimSpace(reason) == "" {
		reason = ""
	}
	if utf8.RuneCountInString(strings.TrimSpace(reason)) > MaxNoteLength {
		return NewValidationError("reason", "Cancel reason cannot exceed 1000 characters").WithDetail(DetailOrderID, o.ID.String())
	}

	from := o.Status
	t := o.apply(ActionCancel, StatusCancelled, actorID, reason)
	o.CancelledBy = &actorID
	o.CancelledAt = &t.OccurredAt
	o.CancelReason = reason

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, from))
	return nil
}

// apply mutates status and version and records the transition
func (o *PurchaseOrder) apply(action Action, to OrderStatus, actorID uuid.UUID, note string) *Transition {
	now := time.Now()
	t := &Transition{
		Action:      action,
		FromStatus:  o.Status,
		ToStatus:    to,
		FromVersion: o.Version,
		ActorID:     actorID,
		Note:        note,
		OccurredAt:  now,
	}
	o.Status = to
	o.UpdatedAt = now
	o.IncrementVersion()
	o.lastTransition = t

	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, t))
	return t
}
