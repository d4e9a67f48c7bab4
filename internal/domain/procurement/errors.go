package procurement

import (
	"fmt"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// Error codes surfaced to callers
const (
	CodeInvalidQuantity               = "INVALID_QUANTITY"
	CodeProductNotFound               = "PRODUCT_NOT_FOUND"
	CodeSupplierNotAssigned           = "SUPPLIER_NOT_ASSIGNED"
	CodeSupplierCurrencyUndefined     = "SUPPLIER_CURRENCY_UNDEFINED"
	CodeInconsistentProductAssignment = "INCONSISTENT_PRODUCT_ASSIGNMENT"
	CodeWarehouseRequired             = "WAREHOUSE_REQUIRED"
	CodeUnauthenticated               = "UNAUTHENTICATED"
	CodeOrderNumberConflict           = "ORDER_NUMBER_ALLOCATION_CONFLICT"
	CodeIllegalTransition             = "ILLEGAL_TRANSITION"
	CodeCancelBlockedByReceipt        = "CANCEL_BLOCKED_BY_RECEIPT"
	CodeOrderNotFound                 = "ORDER_NOT_FOUND"
	CodeValidationFailed              = "VALIDATION_FAILED"
	CodeOrderNotEditable              = "ORDER_NOT_EDITABLE"
	CodeDuplicateSubmission           = "DUPLICATE_SUBMISSION"
)

// Detail keys
const (
	DetailProductCode = "product_code"
	DetailOrderID     = "order_id"
	DetailStatus      = "status"
	DetailAction      = "action"
	DetailField       = "field"
)

// Sentinels for errors.Is; they match any error carrying the same code
var (
	ErrInvalidQuantity               = shared.NewDomainError(CodeInvalidQuantity, "Quantity must be positive")
	ErrProductNotFound               = shared.NewDomainError(CodeProductNotFound, "Product not found")
	ErrSupplierNotAssigned           = shared.NewDomainError(CodeSupplierNotAssigned, "Product has no assigned supplier")
	ErrSupplierCurrencyUndefined     = shared.NewDomainError(CodeSupplierCurrencyUndefined, "Supplier has no currency configured")
	ErrInconsistentProductAssignment = shared.NewDomainError(CodeInconsistentProductAssignment, "Product resolved to different suppliers or currencies")
	ErrWarehouseRequired             = shared.NewDomainError(CodeWarehouseRequired, "Warehouse is required")
	ErrUnauthenticated               = shared.NewDomainError(CodeUnauthenticated, "Requester is not authenticated")
	ErrOrderNumberConflict           = shared.NewDomainError(CodeOrderNumberConflict, "Order number is already allocated")
	ErrIllegalTransition             = shared.NewDomainError(CodeIllegalTransition, "Illegal status transition")
	ErrCancelBlockedByReceipt        = shared.NewDomainError(CodeCancelBlockedByReceipt, "Order has received goods and cannot be cancelled")
	ErrOrderNotFound                 = shared.NewDomainError(CodeOrderNotFound, "Purchase order not found")
	ErrValidationFailed              = shared.NewDomainError(CodeValidationFailed, "Validation failed")
	ErrOrderNotEditable              = shared.NewDomainError(CodeOrderNotEditable, "Purchase order is not editable")
	ErrDuplicateSubmission           = shared.NewDomainError(CodeDuplicateSubmission, "Request was already submitted")
)

func productError(code, productCode, format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(code, fmt.Sprintf(format, args...)).WithDetail(DetailProductCode, productCode)
}

func orderError(code string, orderID uuid.UUID, format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(code, fmt.Sprintf(format, args...)).WithDetail(DetailOrderID, orderID.String())
}

// NewInvalidQuantityError reports a non-positive or out of range quantity
func NewInvalidQuantityError(productCode, reason string) *shared.DomainError {
	return productError(CodeInvalidQuantity, productCode, "Invalid quantity for product %s: %s", productCode, reason)
}

// NewProductNotFoundError reports an unknown or inactive product code
func NewProductNotFoundError(productCode string) *shared.DomainError {
	return productError(CodeProductNotFound, productCode, "Product %s not found or inactive", productCode)
}

// NewSupplierNotAssignedError reports a product without an active supplier
func NewSupplierNotAssignedError(productCode string) *shared.DomainError {
	return productError(CodeSupplierNotAssigned, productCode, "Product %s has no active supplier assigned", productCode)
}

// NewSupplierCurrencyUndefinedError reports a supplier without a currency
func NewSupplierCurrencyUndefinedError(productCode, supplierCode string) *shared.DomainError {
	return productError(CodeSupplierCurrencyUndefined, productCode,
		"Supplier %s of product %s has no currency configured", supplierCode, productCode)
}

// NewInconsistentAssignmentError reports one product resolving to two supplier/currency pairs
func NewInconsistentAssignmentError(productCode string) *shared.DomainError {
	return productError(CodeInconsistentProductAssignment, productCode,
		"Product %s resolved to more than one supplier or currency in the same batch", productCode)
}

// NewOrderNumberConflictError reports a collision on order number insert
func NewOrderNumberConflictError(orderNumber string) *shared.DomainError {
	return shared.NewDomainError(CodeOrderNumberConflict,
		fmt.Sprintf("Order number %s is already allocated", orderNumber)).WithDetail("order_number", orderNumber)
}

// NewIllegalTransitionError reports an action applied from a status that does not permit it
func NewIllegalTransitionError(orderID uuid.UUID, from OrderStatus, action Action) *shared.DomainError {
	return orderError(CodeIllegalTransition, orderID, "Cannot %s order in %s status", action, from).
		WithDetail(DetailStatus, from.String()).
		WithDetail(DetailAction, action.String())
}

// NewTransitionConflictError reports a lost compare-and-swap on the order row
func NewTransitionConflictError(orderID uuid.UUID, expected OrderStatus, action Action) *shared.DomainError {
	return orderError(CodeIllegalTransition, orderID,
		"Order was modified concurrently, it is no longer in %s status", expected).
		WithDetail(DetailStatus, expected.String()).
		WithDetail(DetailAction, action.String())
}

// NewCancelBlockedError reports a cancel attempt on a partially received order
func NewCancelBlockedError(orderID uuid.UUID, receivePercent string) *shared.DomainError {
	return orderError(CodeCancelBlockedByReceipt, orderID,
		"Order has %s%% received and cannot be cancelled", receivePercent)
}

// NewOrderNotFoundError reports a missing order
func NewOrderNotFoundError(orderID uuid.UUID) *shared.DomainError {
	return orderError(CodeOrderNotFound, orderID, "Purchase order %s not found", orderID)
}

// NewOrderNotEditableError reports a draft-only operation on a non-draft order
func NewOrderNotEditableError(orderID uuid.UUID, status OrderStatus) *shared.DomainError {
	return orderError(CodeOrderNotEditable, orderID, "Order in %s status is not editable", status).
		WithDetail(DetailStatus, status.String())
}

// NewValidationError reports an invalid field value
func NewValidationError(field, message string) *shared.DomainError {
	return shared.NewDomainError(CodeValidationFailed, message).WithDetail(DetailField, field)
}

// IsResolutionError reports whether err is one of the kinds raised while
// resolving and aggregating quick-entry lines
func IsResolutionError(err error) bool {
	de, ok := shared.AsDomainError(err)
	if !ok {
		return false
	}
	switch de.Code {
	case CodeInvalidQuantity, CodeProductNotFound, CodeSupplierNotAssigned,
		CodeSupplierCurrencyUndefined, CodeInconsistentProductAssignment:
		return true
	}
	return false
}
