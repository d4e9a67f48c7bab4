package middleware

import (
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequirePermission requires authenticated claims granting any of
// permissions. Missing claims give 401, missing permissions 403.
func RequirePermission(log *zap.Logger, permissions ...string) gin.HandlerFunc {
	return requirePermission(log, false, permissions)
}

// RequirePermissionIfAuthenticated lets anonymous requests through untouched
// and holds authenticated ones to the same check as RequirePermission.
func RequirePermissionIfAuthenticated(log *zap.Logger, permissions ...string) gin.HandlerFunc {
	return requirePermission(log, true, permissions)
}

func requirePermission(log *zap.Logger, allowAnonymous bool, permissions []string) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			if allowAnonymous {
				c.Next()
				return
			}
			abortWithError(c, procurement.CodeUnauthenticated, "Authentication required")
			return
		}
		if !claims.HasAnyPermission(permissions...) {
			log.Info("Permission denied",
				zap.String("user_id", claims.UserID),
				zap.String("tenant_id", claims.TenantID),
				zap.Strings("required_any", permissions),
				zap.String("route", c.FullPath()),
			)
			abortWithError(c, dto.ErrCodeForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}
