package dto

import (
	"net/http"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
)

// Transport-level error codes
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "INVALID_TOKEN"
	ErrCodeTokenNotYet     = "TOKEN_NOT_VALID"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// 400: the request itself is wrong
	procurement.CodeValidationFailed:  http.StatusBadRequest,
	procurement.CodeInvalidQuantity:   http.StatusBadRequest,
	procurement.CodeWarehouseRequired: http.StatusBadRequest,
	ErrCodeBadRequest:                 http.StatusBadRequest,
	"INVALID_INPUT":                   http.StatusBadRequest,

	procurement.CodeUnauthenticated: http.StatusUnauthorized,
	"UNAUTHORIZED":                  http.StatusUnauthorized,
	ErrCodeTokenExpired:             http.StatusUnauthorized,
	ErrCodeTokenInvalid:             http.StatusUnauthorized,
	ErrCodeTokenNotYet:              http.StatusUnauthorized,

	ErrCodeForbidden: http.StatusForbidden,

	procurement.CodeOrderNotFound: http.StatusNotFound,
	"NOT_FOUND":                   http.StatusNotFound,
	ErrCodeRouteNotFound:          http.StatusNotFound,

	// 409: the request conflicts with the current order state
	procurement.CodeIllegalTransition:      http.StatusConflict,
	procurement.CodeCancelBlockedByReceipt: http.StatusConflict,
	procurement.CodeOrderNumberConflict:    http.StatusConflict,
	procurement.CodeOrderNotEditable:       http.StatusConflict,
	procurement.CodeDuplicateSubmission:    http.StatusConflict,
	"CONCURRENCY_CONFLICT":                 http.StatusConflict,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// 422: the lines could not be resolved against the catalog
	procurement.CodeProductNotFound:               http.StatusUnprocessableEntity,
	procurement.CodeSupplierNotAssigned:           http.StatusUnprocessableEntity,
	procurement.CodeSupplierCurrencyUndefined:     http.StatusUnprocessableEntity,
	procurement.CodeInconsistentProductAssignment: http.StatusUnprocessableEntity,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for code, or 500 when it is unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorInfoFromDomain builds the error body for a domain error, lifting the
// offending product code, order id and field out of the details
func ErrorInfoFromDomain(err *shared.DomainError) *ErrorInfo {
	info := &ErrorInfo{Code: err.Code, Message: err.Message}
	for k, v := range err.Details {
		switch k {
		case procurement.DetailProductCode:
			info.ProductCode = v
		case procurement.DetailOrderID:
			info.OrderID = v
		case procurement.DetailField:
			info.Field = v
		default:
			if info.Details == nil {
				info.Details = make(map[string]string)
			}
			info.Details[k] = v
		}
	}
	return info
}
