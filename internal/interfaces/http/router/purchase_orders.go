package router

import (
	"github.com/erp/procurement/internal/infrastructure/auth"
	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PurchaseOrderRoutes builds the /purchase-orders group. guard wraps the
// endpoints that create orders; pass nil to disable duplicate detection.
//
// Quick entry lets anonymous requests reach the service, which reports
// missing identity after the warehouse check. Authenticated callers still
// need the create permission.
func PurchaseOrderRoutes(h *handler.PurchaseOrderHandler, guard gin.HandlerFunc, log *zap.Logger) *DomainGroup {
	perm := func(permissions ...string) gin.HandlerFunc {
		return middleware.RequirePermission(log, permissions...)
	}
	// guarded inserts the guard directly in front of the final handler
	guarded := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if guard == nil {
			return handlers
		}
		last := len(handlers) - 1
		return append(append(handlers[:last:last], guard), handlers[last])
	}

	g := NewDomainGroup("purchase-orders", "/purchase-orders")

	g.POST("/quick-entry", guarded(middleware.RequirePermissionIfAuthenticated(log, auth.PermissionCreate), h.QuickEntry)...)
	g.GET("", perm(auth.PermissionRead), h.List)
	g.POST("/bulk/validate", perm(auth.PermissionApprove), h.BulkValidate)
	g.POST("/bulk/status", perm(auth.PermissionApprove), h.BulkStatus)
	g.POST("/import/validate", perm(auth.PermissionImport), h.ImportValidate)
	g.POST("/import/execute", guarded(perm(auth.PermissionImport), h.ImportExecute)...)

	g.GET("/:id", perm(auth.PermissionRead), h.GetByID)
	g.DELETE("/:id", perm(auth.PermissionDelete), h.Delete)
	g.GET("/:id/history", perm(auth.PermissionRead), h.History)
	g.POST("/:id/submit", perm(auth.PermissionSubmit), h.Submit)
	g.POST("/:id/route", perm(auth.PermissionSubmit), h.Route)
	g.POST("/:id/reopen", perm(auth.PermissionSubmit), h.Reopen)
	g.POST("/:id/approve", perm(auth.PermissionApprove), h.Approve)
	g.POST("/:id/reject", perm(auth.PermissionApprove), h.Reject)
	g.POST("/:id/confirm", perm(auth.PermissionConfirm), h.Confirm)
	g.POST("/:id/receipt", perm(auth.PermissionReceive), h.Receipt)
	g.POST("/:id/close", perm(auth.PermissionReceive), h.Close)
	g.POST("/:id/cancel", perm(auth.PermissionCancel), h.Cancel)

	return g
}
