package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	procurementapp "github.com/erp/procurement/internal/application/procurement"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/auth"
	"github.com/erp/procurement/internal/infrastructure/cache"
	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/erp/procurement/internal/infrastructure/event"
	poimport "github.com/erp/procurement/internal/infrastructure/import"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/persistence"
	"github.com/erp/procurement/internal/infrastructure/storage"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

//	@title			Procurement API
//	@version		1.0
//	@description	Purchase order consolidation and lifecycle service

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry first so the final logger can tee into the OTLP log bridge
	tel, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		Traces:            cfg.Telemetry.Enabled,
		Metrics:           cfg.Telemetry.MetricsEnabled,
		Logs:              cfg.Telemetry.LogsEnabled,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			bootLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log, err := logger.New(logCfg, tel.LogCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting procurement service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	profiler, err := telemetry.StartProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServer,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingBasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingBasicAuthPassword,
		ProfileTypes:      cfg.Telemetry.ProfilingTypes,
		SpanProfiles:      cfg.Telemetry.ProfilingSpanProfiles,
	}, tel, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Database with zap-backed GORM logger and query tracing
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	taxCodeRepo := persistence.NewGormTaxCodeRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	assignmentRepo := persistence.NewGormAssignmentRepository(db.DB)
	priceListRepo := persistence.NewGormPriceListRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	historyRepo := persistence.NewGormStatusHistoryRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus; Kafka publishing is an optional subscriber
	eventBus := event.NewInMemoryEventBus(log)
	var kafkaSink *event.KafkaSink
	if cfg.Kafka.Enabled {
		producer, err := event.NewKafkaProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("Failed to create kafka producer", zap.Error(err), zap.Strings("brokers", cfg.Kafka.Brokers))
		}
		kafkaSink = event.NewKafkaSink(producer, cfg.Kafka.Topic, event.DefaultBreakerSettings(), log)
		eventBus.Subscribe(kafkaSink)
		log.Info("Kafka event sink enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
		if kafkaSink != nil {
			if err := kafkaSink.Close(); err != nil {
				log.Error("Error closing kafka sink", zap.Error(err))
			}
		}
	}()

	// Import file archive
	var archive procurementapp.FileArchive = storage.NoopArchive{}
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3Archive(context.Background(), cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create import archive", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = s3Archive.EnsureBucket(ctx)
		cancel()
		if err != nil {
			log.Fatal("Failed to prepare import archive bucket", zap.Error(err), zap.String("bucket", cfg.Storage.Bucket))
		}
		archive = s3Archive
	}

	metrics, err := telemetry.NewProcurementMetrics(tel.Meter("procurement"), log)
	if err != nil {
		log.Fatal("Failed to create procurement metrics", zap.Error(err))
	}

	// Application services
	resolver := procurement.NewLineResolver(productRepo, taxCodeRepo, supplierRepo, assignmentRepo, priceListRepo)
	quickEntryService := procurementapp.NewQuickEntryService(resolver, txScope,
		procurementapp.WithMaxBatchLines(cfg.Procurement.MaxBatchLines),
		procurementapp.WithQuickEntryLogger(log),
	)
	lifecycleService := procurementapp.NewLifecycleService(orderRepo, historyRepo, txScope,
		procurementapp.WithApprovalThreshold(cfg.Procurement.ApprovalThreshold),
		procurementapp.WithApprovalAlwaysRequired(cfg.Procurement.RequireApproval),
		procurementapp.WithMaxBulkOrders(cfg.Procurement.MaxBulkOrders),
		procurementapp.WithLifecycleLogger(log),
	)
	importService := procurementapp.NewImportService(quickEntryService, resolver,
		procurementapp.WithLineParser(poimport.NewLineParser(
			poimport.WithMaxRows(cfg.Procurement.MaxImportRows),
			poimport.WithMaxBytes(cfg.Procurement.MaxImportBytes),
		)),
		procurementapp.WithFileArchive(archive),
		procurementapp.WithImportLogger(log),
	)
	for _, svc := range []interface {
		SetEventPublisher(shared.EventPublisher)
		SetMetrics(*telemetry.ProcurementMetrics)
	}{quickEntryService, lifecycleService} {
		svc.SetEventPublisher(eventBus)
		svc.SetMetrics(metrics)
	}
	importService.SetMetrics(metrics)

	idempotency := cache.NewIdempotencyStore(context.Background(), cfg.Redis, log)
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	var tracerProvider trace.TracerProvider
	if tel.TracingEnabled() {
		tracerProvider = tel.TracerProvider()
	}
	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:      cfg.Telemetry.ServiceName,
		HTTP:             cfg.HTTP,
		IdempotencyTTL:   cfg.Procurement.IdempotencyTTL,
		TracingEnabled:   tel.TracingEnabled(),
		TracerProvider:   tracerProvider,
		Meter:            tel.Meter("procurement.http"),
		ProfilingEnabled: profiler.Running(),
	}, router.Dependencies{
		Logger:      log,
		Tokens:      auth.NewJWTService(cfg.JWT),
		Idempotency: idempotency,
		PurchaseOrders: handler.NewPurchaseOrderHandler(quickEntryService, lifecycleService, importService,
			handler.WithMaxImportBytes(int64(cfg.Procurement.MaxImportBytes)),
			handler.WithHandlerLogger(log),
		),
		System: handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, map[string]handler.Pinger{"database": db}),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}
