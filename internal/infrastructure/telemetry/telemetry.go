// Package telemetry wires OpenTelemetry traces, metrics and logs for the
// procurement service.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceVersion is reported on every exported signal
const ServiceVersion = "1.0.0"

// Config holds OTLP export settings
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	Insecure          bool
	ServiceName       string
	SamplingRatio     float64
	ExportInterval    time.Duration
	Traces            bool
	Metrics           bool
	Logs              bool
}

// Telemetry owns the SDK providers. Signals that are disabled fall back to
// the global no-op implementations.
type Telemetry struct {
	config Config
	logger *zap.Logger
	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
	logs   *sdklog.LoggerProvider
}

// Setup creates the enabled providers and installs them globally
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Telemetry{config: cfg, logger: logger}
	if !cfg.Enabled {
		logger.Info("Telemetry disabled, using no-op providers")
		return t, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if cfg.Traces {
		if err := t.setupTraces(ctx, res); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics {
		if err := t.setupMetrics(ctx, res); err != nil {
			_ = t.Shutdown(ctx)
			return nil, err
		}
	}
	if cfg.Logs {
		if err := t.setupLogs(ctx, res); err != nil {
			_ = t.Shutdown(ctx)
			return nil, err
		}
	}

	logger.Info("OpenTelemetry initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
		zap.Bool("traces", t.tracer != nil),
		zap.Bool("metrics", t.meter != nil),
		zap.Bool("logs", t.logs != nil),
	)
	return t, nil
}

func (t *Telemetry) setupTraces(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(t.config.CollectorEndpoint)}
	if t.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	t.tracer = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(t.config.SamplingRatio)),
	)
	otel.SetTracerProvider(t.tracer)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

func (t *Telemetry) setupMetrics(ctx context.Context, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(t.config.CollectorEndpoint)}
	if t.config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	interval := t.config.ExportInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	t.meter = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(t.meter)
	return nil
}

func (t *Telemetry) setupLogs(ctx context.Context, res *resource.Resource) error {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(t.config.CollectorEndpoint)}
	if t.config.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP logs exporter: %w", err)
	}
	t.logs = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(t.logs)
	return nil
}

func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Meter returns a named meter
func (t *Telemetry) Meter(name string) metric.Meter {
	if t.meter == nil {
		return otel.GetMeterProvider().Meter(name)
	}
	return t.meter.Meter(name)
}

// Tracer returns a named tracer
func (t *Telemetry) Tracer(name string) trace.Tracer {
	if t.tracer == nil {
		return otel.GetTracerProvider().Tracer(name)
	}
	return t.tracer.Tracer(name)
}

// TracingEnabled reports whether spans are exported
func (t *Telemetry) TracingEnabled() bool {
	return t.tracer != nil
}

// TracerProvider exposes the SDK tracer provider, nil when tracing is off
func (t *Telemetry) TracerProvider() *sdktrace.TracerProvider {
	return t.tracer
}

// LogCore returns a zap core that forwards entries at or above level to
// OTLP. It is a no-op core when log export is off; combine it with the
// stdout core through zapcore.NewTee.
func (t *Telemetry) LogCore(level zapcore.Level) zapcore.Core {
	if t.logs == nil {
		return zapcore.NewNopCore()
	}
	core := otelzap.NewCore(t.config.ServiceName, otelzap.WithLoggerProvider(t.logs))
	return &levelCore{Core: core, min: level}
}

// Shutdown flushes and stops every provider. Errors are joined.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	if t.tracer != nil {
		if err := t.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if t.meter != nil {
		if err := t.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	if t.logs != nil {
		if err := t.logs.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("logger provider: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		t.logger.Error("Telemetry shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// levelCore drops entries below min; the otelzap core accepts every level.
type levelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *levelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *levelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{Core: c.Core.With(fields), min: c.min}
}
