package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// TracingConfig holds tracing configuration
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	Insecure       bool
	SamplingRate   float64
	Enabled        bool
}

// TracingProvider wraps OpenTelemetry tracing functionality. A disabled
// provider hands out no-op spans.
type TracingProvider struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	logger   *zap.Logger
	config   TracingConfig
}

// NewTracingProvider creates a tracing provider exporting over OTLP/HTTP
func NewTracingProvider(config TracingConfig, logger *zap.Logger) (*TracingProvider, error) {
	logger = logger.Named("tracing")

	if !config.Enabled {
		logger.Info("Tracing is disabled")
		return &TracingProvider{
			tracer: noop.NewTracerProvider().Tracer(config.ServiceName),
			logger: logger,
			config: config,
		}, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.OTLPEndpoint)}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.DeploymentEnvironment(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return newTracingProvider(config, sdktrace.NewBatchSpanProcessor(exporter), res, logger), nil
}

// NewTracingProviderWithProcessor creates a provider around a custom span
// processor, such as an in-memory recorder.
func NewTracingProviderWithProcessor(config TracingConfig, processor sdktrace.SpanProcessor, logger *zap.Logger) *TracingProvider {
	return newTracingProvider(config, processor, resource.Default(), logger.Named("tracing"))
}

func newTracingProvider(config TracingConfig, processor sdktrace.SpanProcessor, res *resource.Resource, logger *zap.Logger) *TracingProvider {
	rate := config.SamplingRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing initialized",
		zap.String("service", config.ServiceName),
		zap.String("version", config.ServiceVersion),
		zap.String("environment", config.Environment),
		zap.String("otlp_endpoint", config.OTLPEndpoint),
		zap.Float64("sampling_rate", rate),
	)

	return &TracingProvider{
		tracer:   tp.Tracer(config.ServiceName, trace.WithInstrumentationVersion(config.ServiceVersion)),
		provider: tp,
		logger:   logger,
		config:   config,
	}
}

// Tracer returns the tracer spans are started from
func (t *TracingProvider) Tracer() trace.Tracer {
	return t.tracer
}

// StartSpan starts a new span with the given name and options
func (t *TracingProvider) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// AddSpanAttributes adds attributes to the current span
func (t *TracingProvider) AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// RecordError records an error in the current span
func (t *TracingProvider) RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Shutdown flushes pending spans
func (t *TracingProvider) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	t.logger.Info("Tracing shutdown completed")
	return nil
}
