package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/interfaces/http/dto"
	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// EngineConfig configures the HTTP engine
type EngineConfig struct {
	ServiceName      string
	HTTP             config.HTTPConfig
	IdempotencyTTL   time.Duration
	TracingEnabled   bool
	TracerProvider   trace.TracerProvider
	Meter            metric.Meter
	ProfilingEnabled bool
}

// Dependencies are the collaborators mounted on the engine
type Dependencies struct {
	Logger         *zap.Logger
	Tokens         middleware.TokenValidator
	Idempotency    shared.IdempotencyStore
	PurchaseOrders *handler.PurchaseOrderHandler
	System         *handler.SystemHandler
}

// NewEngine builds the gin engine with the full middleware chain and all routes
func NewEngine(cfg EngineConfig, deps Dependencies) (*gin.Engine, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("token validator is required")
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create http metrics: %w", err)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORS(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.TracingEnabled,
			TracerProvider: cfg.TracerProvider,
		}),
		middleware.Authenticate(deps.Tokens, log),
		middleware.TraceAttributes(),
		middleware.Profiling(cfg.ProfilingEnabled),
		httpMetrics,
	)

	if deps.System != nil {
		engine.GET("/health", deps.System.Health)
		engine.GET("/ready", deps.System.Ready)
	}

	r := NewRouter(engine)
	if deps.System != nil {
		r.Register(NewDomainGroup("system", "/system").
			GET("/info", deps.System.GetSystemInfo).
			GET("/ping", deps.System.Ping))
	}
	if deps.PurchaseOrders != nil {
		var guard gin.HandlerFunc
		if deps.Idempotency != nil {
			guard = middleware.SubmissionGuard(deps.Idempotency, cfg.IdempotencyTTL, log)
		}
		r.Register(PurchaseOrderRoutes(deps.PurchaseOrders, guard, log))
	}
	r.Setup()

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(&dto.ErrorInfo{
			Code:      dto.ErrCodeRouteNotFound,
			Message:   "Route not found",
			RequestID: middleware.GetRequestID(c),
		}))
	})

	return engine, nil
}
