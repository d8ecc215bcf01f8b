package telemetry

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/daily-journal/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.uber.org/zap"
)

// ServiceName identifies this program in exported traces
const ServiceName = "daily-journal"

// Options controls trace export
type Options struct {
	Enabled     bool
	ServiceName string
	// Endpoint is either host:port (sent over plain HTTP) or a full URL.
	// Empty leaves the exporter to read the standard OTEL_EXPORTER_OTLP_* variables.
	Endpoint string
}

// InitTracer installs a global tracer provider that exports over OTLP/HTTP.
// It returns nil when tracing is disabled, leaving the no-op global provider in place.
func InitTracer(ctx context.Context, opts Options, log *zap.Logger) (*sdktrace.TracerProvider, error) {
	log = logger.OrNop(log)
	if !opts.Enabled {
		log.Debug("tracing_disabled")
		return nil, nil
	}
	if opts.ServiceName == "" {
		opts.ServiceName = ServiceName
	}

	exporter, err := otlptracehttp.New(ctx, exporterOptions(opts.Endpoint)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("tracing_enabled",
		zap.String("service", opts.ServiceName),
		zap.String("endpoint", opts.Endpoint),
	)
	return tp, nil
}

func exporterOptions(endpoint string) []otlptracehttp.Option {
	switch {
	case endpoint == "":
		return nil
	case strings.Contains(endpoint, "://"):
		return []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
	default:
		return []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		}
	}
}

// Shutdown flushes pending spans and stops the tracer provider. A nil provider is a no-op.
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}
