package handler

import (
	"context"
	"fmt"
	"io"

	procurementapp "github.com/erp/procurement/internal/application/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/interfaces/http/dto"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxImportBytes caps uploaded import files when no limit is configured
const DefaultMaxImportBytes int64 = 10 * 1024 * 1024

// QuickEntryCreator consolidates quick-entry lines into purchase orders
type QuickEntryCreator interface {
	Create(ctx context.Context, tenantID uuid.UUID, requesterID *uuid.UUID, req procurementapp.QuickEntryRequest) (*procurementapp.QuickEntryResponse, error)
}

// OrderLifecycle reads purchase orders and moves them through their statuses
type OrderLifecycle interface {
	GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter procurementapp.PurchaseOrderListFilter) ([]procurementapp.PurchaseOrderListItem, int64, error)
	History(ctx context.Context, tenantID, orderID uuid.UUID, filter shared.Filter) ([]procurementapp.StatusHistoryResponse, int64, error)
	Submit(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)
	RouteForApproval(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)
	Approve(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req procurementapp.ApproveRequest) (*procurementapp.PurchaseOrderResponse, error)
	Reject(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req procurementapp.RejectRequest) (*procurementapp.PurchaseOrderResponse, error)
	Reopen(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)
	Confirm(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)
	RecordReceipt(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req procurementapp.ReceiptRequest) (*procurementapp.PurchaseOrderResponse, error)
	Close(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)
	Cancel(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, req procurementapp.CancelRequest) (*procurementapp.PurchaseOrderResponse, error)
	Delete(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) error
	BulkValidate(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req procurementapp.BulkStatusRequest) (*procurementapp.BulkStatusResponse, error)
	BulkStatus(ctx context.Context, tenantID uuid.UUID, actorID *uuid.UUID, req procurementapp.BulkStatusRequest) (*procurementapp.BulkStatusResponse, error)
}

// OrderImporter validates and executes purchase order file imports
type OrderImporter interface {
	Validate(ctx context.Context, tenantID uuid.UUID, filename string, data []byte) (*procurementapp.ImportValidationResponse, error)
	Execute(ctx context.Context, tenantID uuid.UUID, requesterID, warehouseID *uuid.UUID, filename string, data []byte) (*procurementapp.ImportExecuteResponse, error)
}

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	quickEntry     QuickEntryCreator
	lifecycle      OrderLifecycle
	importer       OrderImporter
	maxImportBytes int64
}

// PurchaseOrderHandlerOption configures a PurchaseOrderHandler
type PurchaseOrderHandlerOption func(*PurchaseOrderHandler)

// WithMaxImportBytes sets the upload size limit for import files
func WithMaxImportBytes(n int64) PurchaseOrderHandlerOption {
	return func(h *PurchaseOrderHandler) {
		if n > 0 {
			h.maxImportBytes = n
		}
	}
}

// WithHandlerLogger sets the logger used for unexpected errors
func WithHandlerLogger(logger *zap.Logger) PurchaseOrderHandlerOption {
	return func(h *PurchaseOrderHandler) {
		h.BaseHandler = newBaseHandler(logger)
	}
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(quickEntry QuickEntryCreator, lifecycle OrderLifecycle, importer OrderImporter, opts ...PurchaseOrderHandlerOption) *PurchaseOrderHandler {
	h := &PurchaseOrderHandler{
		BaseHandler:    newBaseHandler(nil),
		quickEntry:     quickEntry,
		lifecycle:      lifecycle,
		importer:       importer,
		maxImportBytes: DefaultMaxImportBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// QuickEntry godoc
// @ID           createPurchaseOrdersQuickEntry
// @Summary      Create purchase orders from quick entry
// @Description  Resolves each product code to its supplier, aggregates duplicate lines and creates one draft order per supplier and currency
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client generated key that makes retries safe"
// @Param        request body procurementapp.QuickEntryRequest true "Quick entry lines"
// @Success      201 {object} APIResponse[procurementapp.QuickEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/quick-entry [post]
func (h *PurchaseOrderHandler) QuickEntry(c *gin.Context) {
	var req procurementapp.QuickEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.quickEntry.Create(c.Request.Context(), tenantID(c), middleware.GetUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @ID           getPurchaseOrderById
// @Summary      Get purchase order by ID
// @Description  Retrieve a purchase order with its lines and totals
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.lifecycle.GetByID(c.Request.Context(), tenantID(c), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List godoc
// @ID           listPurchaseOrders
// @Summary      List purchase orders
// @Description  Retrieve a paginated list of purchase orders with optional filtering
// @Tags         purchase-orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc) default(desc)
// @Param        search query string false "Search by order number or supplier name"
// @Param        status query string false "Order status"
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        warehouse_id query string false "Warehouse ID" format(uuid)
// @Param        currency query string false "ISO 4217 currency code"
// @Success      200 {object} APIResponse[[]procurementapp.PurchaseOrderListItem]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter procurementapp.PurchaseOrderListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	items, total, err := h.lifecycle.List(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// History godoc
// @ID           listPurchaseOrderHistory
// @Summary      List purchase order status history
// @Description  Retrieve the audited status changes of a purchase order, newest first
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]procurementapp.StatusHistoryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/history [get]
func (h *PurchaseOrderHandler) History(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}
	var q PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q = q.normalized()

	filter := shared.Filter{Page: q.Page, PageSize: q.PageSize}
	items, total, err := h.lifecycle.History(c.Request.Context(), tenantID(c), orderID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, q.Page, q.PageSize)
}

// Submit godoc
// @ID           submitPurchaseOrder
// @Summary      Submit a purchase order
// @Description  Submit a draft or rejected order. Orders above the approval threshold move to pending approval.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/submit [post]
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	h.transition(c, h.lifecycle.Submit)
}

// Route godoc
// @ID           routePurchaseOrderForApproval
// @Summary      Route a purchase order for approval
// @Description  Move a submitted order to pending approval
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/route [post]
func (h *PurchaseOrderHandler) Route(c *gin.Context) {
	h.transition(c, h.lifecycle.RouteForApproval)
}

// Approve godoc
// @ID           approvePurchaseOrder
// @Summary      Approve a purchase order
// @Description  Approve an order that is pending approval
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body procurementapp.ApproveRequest false "Approval notes"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/approve [post]
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	var req procurementapp.ApproveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.transition(c, func(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
		return h.lifecycle.Approve(ctx, tenantID, orderID, actorID, req)
	})
}

// Reject godoc
// @ID           rejectPurchaseOrder
// @Summary      Reject a purchase order
// @Description  Reject an order with a mandatory reason
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body procurementapp.RejectRequest true "Rejection reason"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/reject [post]
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	var req procurementapp.RejectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.transition(c, func(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
		return h.lifecycle.Reject(ctx, tenantID, orderID, actorID, req)
	})
}

// Reopen godoc
// @ID           reopenPurchaseOrder
// @Summary      Reopen a rejected purchase order
// @Description  Move a rejected order back to draft so it can be edited and resubmitted
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/reopen [post]
func (h *PurchaseOrderHandler) Reopen(c *gin.Context) {
	h.transition(c, h.lifecycle.Reopen)
}

// Confirm godoc
// @ID           confirmPurchaseOrder
// @Summary      Confirm a purchase order
// @Description  Confirm an approved order with the supplier
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/confirm [post]
func (h *PurchaseOrderHandler) Confirm(c *gin.Context) {
	h.transition(c, h.lifecycle.Confirm)
}

// Receipt godoc
// @ID           recordPurchaseOrderReceipt
// @Summary      Record goods receipt progress
// @Description  Record the received percentage of a confirmed order. 100 percent completes the receipt.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body procurementapp.ReceiptRequest true "Receipt progress"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/receipt [post]
func (h *PurchaseOrderHandler) Receipt(c *gin.Context) {
	var req procurementapp.ReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.transition(c, func(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
		return h.lifecycle.RecordReceipt(ctx, tenantID, orderID, actorID, req)
	})
}

// Close godoc
// @ID           closePurchaseOrder
// @Summary      Close a purchase order
// @Description  Close a fully received order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/close [post]
func (h *PurchaseOrderHandler) Close(c *gin.Context) {
	h.transition(c, h.lifecycle.Close)
}

// Cancel godoc
// @ID           cancelPurchaseOrder
// @Summary      Cancel a purchase order
// @Description  Cancel an order that has not received any goods
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body procurementapp.CancelRequest false "Cancellation reason"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	var req procurementapp.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.transition(c, func(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
		return h.lifecycle.Cancel(ctx, tenantID, orderID, actorID, req)
	})
}

// Delete godoc
// @ID           deletePurchaseOrder
// @Summary      Delete a purchase order
// @Description  Delete a purchase order (only allowed in draft status)
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	if err := h.lifecycle.Delete(c.Request.Context(), tenantID(c), orderID, middleware.GetUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// BulkValidate godoc
// @ID           validateBulkPurchaseOrderStatus
// @Summary      Dry-run a bulk status change
// @Description  Report, per order, whether the action could be applied. Nothing is persisted.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body procurementapp.BulkStatusRequest true "Orders and action"
// @Success      200 {object} APIResponse[procurementapp.BulkStatusResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/bulk/validate [post]
func (h *PurchaseOrderHandler) BulkValidate(c *gin.Context) {
	var req procurementapp.BulkStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.lifecycle.BulkValidate(c.Request.Context(), tenantID(c), middleware.GetUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// BulkStatus godoc
// @ID           updateBulkPurchaseOrderStatus
// @Summary      Apply a status change to many orders
// @Description  Apply the action to each order independently and report per-order results
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body procurementapp.BulkStatusRequest true "Orders and action"
// @Success      200 {object} APIResponse[procurementapp.BulkStatusResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/bulk/status [post]
func (h *PurchaseOrderHandler) BulkStatus(c *gin.Context) {
	var req procurementapp.BulkStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.lifecycle.BulkStatus(c.Request.Context(), tenantID(c), middleware.GetUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ImportValidate godoc
// @ID           validatePurchaseOrderImport
// @Summary      Validate a purchase order import file
// @Description  Parse and resolve a CSV or XLSX file without creating orders
// @Tags         purchase-orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV or XLSX file"
// @Success      200 {object} APIResponse[procurementapp.ImportValidationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/import/validate [post]
func (h *PurchaseOrderHandler) ImportValidate(c *gin.Context) {
	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	resp, err := h.importer.Validate(c.Request.Context(), tenantID(c), filename, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ImportExecute godoc
// @ID           executePurchaseOrderImport
// @Summary      Import purchase orders from a file
// @Description  Create purchase orders from a CSV or XLSX file. Any invalid row rejects the whole file.
// @Tags         purchase-orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        Idempotency-Key header string false "Client generated key that makes retries safe"
// @Param        file formData file true "CSV or XLSX file"
// @Param        warehouse_id formData string true "Receiving warehouse ID" format(uuid)
// @Success      201 {object} APIResponse[procurementapp.ImportExecuteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/import/execute [post]
func (h *PurchaseOrderHandler) ImportExecute(c *gin.Context) {
	var warehouseID *uuid.UUID
	if raw := c.PostForm("warehouse_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse ID format")
			return
		}
		warehouseID = &id
	}

	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	resp, err := h.importer.Execute(c.Request.Context(), tenantID(c), middleware.GetUserID(c), warehouseID, filename, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

type transitionFunc func(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)

func (h *PurchaseOrderHandler) transition(c *gin.Context, fn transitionFunc) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := fn(c.Request.Context(), tenantID(c), orderID, middleware.GetUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *PurchaseOrderHandler) orderID(c *gin.Context) (uuid.UUID, bool) {
	return h.parseID(c, "id", "Invalid order ID format")
}

// readUpload reads the multipart "file" field, enforcing the import size limit
func (h *PurchaseOrderHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "File is required")
		return "", nil, false
	}
	defer file.Close()

	tooLarge := fmt.Sprintf("Import file exceeds %d bytes", h.maxImportBytes)
	if header.Size > h.maxImportBytes {
		h.Error(c, dto.ErrCodeRequestTooLarge, tooLarge)
		return "", nil, false
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxImportBytes+1))
	if err != nil {
		h.BadRequest(c, "Failed to read file")
		return "", nil, false
	}
	if int64(len(data)) > h.maxImportBytes {
		h.Error(c, dto.ErrCodeRequestTooLarge, tooLarge)
		return "", nil, false
	}
	return header.Filename, data, true
}
