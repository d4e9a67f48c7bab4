package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client's submission key
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the header value
const MaxIdempotencyKeyLength = 255

// SubmissionGuard rejects a second request carrying an Idempotency-Key the
// same tenant already used on the route. Keys of failed requests are
// released so the client can retry. Requests without the header are not
// guarded. Store errors are logged and the request proceeds.
func SubmissionGuard(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			abortWithError(c, procurement.CodeValidationFailed, "Idempotency-Key is too long")
			return
		}

		scoped := submissionKey(c, key)
		fresh, err := store.MarkProcessed(c.Request.Context(), scoped, ttl)
		if err != nil {
			log.Warn("Submission guard unavailable", zap.Error(err), zap.String("request_id", GetRequestID(c)))
			c.Next()
			return
		}
		if !fresh {
			abortWithError(c, procurement.CodeDuplicateSubmission, "A request with this Idempotency-Key was already submitted")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			// the request context may already be cancelled
			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*time.Second)
			defer cancel()
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn("Failed to release submission key", zap.Error(err), zap.String("key", scoped))
			}
		}
	}
}

func submissionKey(c *gin.Context, key string) string {
	tenant := "anonymous"
	if id, ok := GetTenantID(c); ok {
		tenant = id.String()
	}
	return tenant + ":" + c.FullPath() + ":" + key
}
