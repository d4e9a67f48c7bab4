package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelRoute    = "route"
	ProfilingLabelMethod   = "method"
	ProfilingLabelTenantID = "tenant_id"
)

// Profiling tags the CPU samples of each request with its route, method and
// tenant. Labels are free when no profiler is running. It must run after
// Authenticate.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		labels := []string{ProfilingLabelRoute, route, ProfilingLabelMethod, c.Request.Method}
		if id, ok := GetTenantID(c); ok {
			labels = append(labels, ProfilingLabelTenantID, id.String())
		}
		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(labels...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
