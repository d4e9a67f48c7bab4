package procurementapp

import (
	"time"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Quick Entry DTOs ====================

// QuickEntryRequest represents a quick-entry submission.
// WarehouseID is a pointer so its absence is distinguishable from a zero UUID.
type QuickEntryRequest struct {
	Lines       []QuickEntryLineInput `json:"lines"`
	WarehouseID *uuid.UUID            `json:"warehouse_id"`
}

// QuickEntryLineInput is one product code + quantity pair.
// Lines carry no binding tags; the service validates them after the
// warehouse and requester checks.
type QuickEntryLineInput struct {
	ProductCode string           `json:"product_code"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

// ToEntries converts the request lines into domain entries
func (r QuickEntryRequest) ToEntries() []procurement.ProductEntry {
	entries := make([]procurement.ProductEntry, len(r.Lines))
	for i, l := range r.Lines {
		entries[i] = procurement.ProductEntry{
			ProductCode: l.ProductCode,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Notes:       l.Notes,
		}
	}
	return entries
}

// CreatedOrderSummary summarizes one order produced by quick entry
type CreatedOrderSummary struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Currency     string          `json:"currency"`
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	Status       string          `json:"status"`
	TotalLines   int             `json:"total_lines"`
	NetTotal     decimal.Decimal `json:"net_total"`
	VATTotal     decimal.Decimal `json:"vat_total"`
	GrossTotal   decimal.Decimal `json:"gross_total"`
}

// QuickEntryResponse lists created orders in partition order
type QuickEntryResponse struct {
	PurchaseOrders []CreatedOrderSummary `json:"purchase_orders"`
}

// ToCreatedOrderSummary converts a domain order to its summary
func ToCreatedOrderSummary(o *procurement.PurchaseOrder) CreatedOrderSummary {
	return CreatedOrderSummary{
		ID:           o.ID,
		Number:       o.OrderNumber,
		SupplierID:   o.SupplierID,
		SupplierName: o.SupplierName,
		Currency:     o.Currency.String(),
		WarehouseID:  o.WarehouseID,
		Status:       o.Status.String(),
		TotalLines:   o.TotalLines(),
		NetTotal:     o.NetTotal,
		VATTotal:     o.VATTotal,
		GrossTotal:   o.GrossTotal,
	}
}

// ==================== Purchase Order DTOs ====================

// PurchaseOrderLineResponse represents an order line
type PurchaseOrderLineResponse struct {
	ID             uuid.UUID       `json:"id"`
	LineNo         int             `json:"line_no"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductCode    string          `json:"product_code"`
	ProductName    string          `json:"product_name"`
	UOM            string          `json:"uom"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	LineNet        decimal.Decimal `json:"line_net"`
	LineTax        decimal.Decimal `json:"line_tax"`
	LineGross      decimal.Decimal `json:"line_gross"`
	Notes          string          `json:"notes,omitempty"`
}

// PurchaseOrderResponse represents a purchase order with lines
type PurchaseOrderResponse struct {
	ID              uuid.UUID                   `json:"id"`
	TenantID        uuid.UUID                   `json:"tenant_id"`
	Number          string                      `json:"number"`
	SupplierID      uuid.UUID                   `json:"supplier_id"`
	SupplierName    string                      `json:"supplier_name"`
	Currency        string                      `json:"currency"`
	WarehouseID     uuid.UUID                   `json:"warehouse_id"`
	Status          string                      `json:"status"`
	Editable        bool                        `json:"editable"`
	Cancellable     bool                        `json:"cancellable"`
	Lines           []PurchaseOrderLineResponse `json:"lines"`
	TotalLines      int                         `json:"total_lines"`
	TaxBreakdown    []TaxBreakdownResponse      `json:"tax_breakdown"`
	NetTotal        decimal.Decimal             `json:"net_total"`
	VATTotal        decimal.Decimal             `json:"vat_total"`
	GrossTotal      decimal.Decimal             `json:"gross_total"`
	ReceivePercent  decimal.Decimal             `json:"receive_percent"`
	SubmittedAt     *time.Time                  `json:"submitted_at,omitempty"`
	ApprovedBy      *uuid.UUID                  `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time                  `json:"approved_at,omitempty"`
	ApprovalNotes   string                      `json:"approval_notes,omitempty"`
	RejectedBy      *uuid.UUID                  `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time                  `json:"rejected_at,omitempty"`
	RejectionReason string                      `json:"rejection_reason,omitempty"`
	ConfirmedAt     *time.Time                  `json:"confirmed_at,omitempty"`
	ClosedAt        *time.Time                  `json:"closed_at,omitempty"`
	CancelledBy     *uuid.UUID                  `json:"cancelled_by,omitempty"`
	CancelledAt     *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason    string                      `json:"cancel_reason,omitempty"`
	CreatedBy       *uuid.UUID                  `json:"created_by,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	Version         int                         `json:"version"`
}

// TaxBreakdownResponse is the net subtotal and tax at one rate
type TaxBreakdownResponse struct {
	Rate     decimal.Decimal `json:"rate"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
}

// ToPurchaseOrderResponse converts a domain order to a response DTO
func ToPurchaseOrderResponse(o *procurement.PurchaseOrder) PurchaseOrderResponse {
	breakdown := o.TaxBreakdown()
	taxes := make([]TaxBreakdownResponse, len(breakdown))
	for i, b := range breakdown {
		taxes[i] = TaxBreakdownResponse{Rate: b.RatePercent, Subtotal: b.Subtotal, Tax: b.Tax}
	}
	lines := make([]PurchaseOrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = PurchaseOrderLineResponse{
			ID:             l.ID,
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
	return PurchaseOrderResponse{
		ID:              o.ID,
		TenantID:        o.TenantID,
		Number:          o.OrderNumber,
		SupplierID:      o.SupplierID,
		SupplierName:    o.SupplierName,
		Currency:        o.Currency.String(),
		WarehouseID:     o.WarehouseID,
		Status:          o.Status.String(),
		Editable:        o.IsEditable(),
		Cancellable:     o.CanCancel(),
		Lines:           lines,
		TotalLines:      o.TotalLines(),
		TaxBreakdown:    taxes,
		NetTotal:        o.NetTotal,
		VATTotal:        o.VATTotal,
		GrossTotal:      o.GrossTotal,
		ReceivePercent:  o.ReceivePercent,
		SubmittedAt:     o.SubmittedAt,
		ApprovedBy:      o.ApprovedBy,
		ApprovedAt:      o.ApprovedAt,
		ApprovalNotes:   o.ApprovalNotes,
		RejectedBy:      o.RejectedBy,
		RejectedAt:      o.RejectedAt,
		RejectionReason: o.RejectionReason,
		ConfirmedAt:     o.ConfirmedAt,
		ClosedAt:        o.ClosedAt,
		CancelledBy:     o.CancelledBy,
		CancelledAt:     o.CancelledAt,
		CancelReason:    o.CancelReason,
		CreatedBy:       o.CreatedBy,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}

// PurchaseOrderListItem represents an order in list views (no lines)
type PurchaseOrderListItem struct {
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"number"`
	SupplierID     uuid.UUID       `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name"`
	Currency       string          `json:"currency"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	Status         string          `json:"status"`
	GrossTotal     decimal.Decimal `json:"gross_total"`
	ReceivePercent decimal.Decimal `json:"receive_percent"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToPurchaseOrderListItem converts a domain order to a list item
func ToPurchaseOrderListItem(o *procurement.PurchaseOrder) PurchaseOrderListItem {
	return PurchaseOrderListItem{
		ID:             o.ID,
		Number:         o.OrderNumber,
		SupplierID:     o.SupplierID,
		SupplierName:   o.SupplierName,
		Currency:       o.Currency.String(),
		WarehouseID:    o.WarehouseID,
		Status:         o.Status.String(),
		GrossTotal:     o.GrossTotal,
		ReceivePercent: o.ReceivePercent,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// PurchaseOrderListFilter represents filter options for order lists
type PurchaseOrderListFilter struct {
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by" binding:"omitempty,oneof=order_number status gross_total created_at updated_at"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search      string     `form:"search" binding:"max=100"`
	Status      string     `form:"status"`
	SupplierID  *uuid.UUID `form:"supplier_id"`
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	Currency    string     `form:"currency" binding:"omitempty,len=3"`
}

// StatusHistoryResponse represents one audit row
type StatusHistoryResponse struct {
	ID         uuid.UUID `json:"id"`
	Action     string    `json:"action"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	ActorID    uuid.UUID `json:"actor_id"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToStatusHistoryResponse converts a history entry to a response DTO
func ToStatusHistoryResponse(h *procurement.StatusHistoryEntry) StatusHistoryResponse {
	return StatusHistoryResponse{
		ID:         h.ID,
		Action:     h.Action.String(),
		FromStatus: h.FromStatus.String(),
		ToStatus:   h.ToStatus.String(),
		ActorID:    h.ActorID,
		Note:       h.Note,
		OccurredAt: h.OccurredAt,
	}
}

// ==================== Lifecycle DTOs ====================

// ApproveRequest carries optional approval notes
type ApproveRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// RejectRequest carries the mandatory rejection reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelRequest carries an optional cancellation reason
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// ReceiptRequest reports receipt progress from the receiving subsystem
type ReceiptRequest struct {
	ReceivePercent decimal.Decimal `json:"receive_percent" binding:"gte=0,lte=100"`
}

// ==================== Bulk DTOs ====================

// BulkAction names the actions accepted by bulk status updates
type BulkAction string

const (
	BulkActionApprove BulkAction = "approve"
	BulkActionReject  BulkAction = "reject"
	BulkActionConfirm BulkAction = "confirm"
	BulkActionCancel  BulkAction = "cancel"
)

// IsValid checks if the bulk action is supported
func (a BulkAction) IsValid() bool {
	switch a {
	case BulkActionApprove, BulkActionReject, BulkActionConfirm, BulkActionCancel:
		return true
	}
	return false
}

// BulkStatusRequest applies one action to many orders
type BulkStatusRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" binding:"required"`
	Action   BulkAction  `json:"action" binding:"required"`
	Reason   string      `json:"reason"`
	Notes    string      `json:"notes"`
}

// BulkItemResult reports the outcome for one order
type BulkItemResult struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number,omitempty"`
	Success     bool      `json:"success"`
	Status      string    `json:"status,omitempty"`
	ErrorCode   string    `json:"error_code,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// BulkStatusResponse aggregates per-order outcomes
type BulkStatusResponse struct {
	Action       BulkAction       `json:"action"`
	DryRun       bool             `json:"dry_run"`
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Results      []BulkItemResult `json:"results"`
}

func (r *BulkStatusResponse) add(item BulkItemResult) {
	if item.Success {
		r.SuccessCount++
	} else {
		r.ErrorCount++
	}
	r.Results = append(r.Results, item)
}
