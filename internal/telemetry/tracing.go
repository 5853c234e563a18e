package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"pypln-web/internal/config"
)

type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTracing installs the global tracer provider exporting over OTLP/HTTP.
// With tracing disabled only the propagators are set. An exporter that
// cannot be created degrades to no tracing instead of failing startup.
func InitTracing(ctx context.Context, cfg config.TelemetryConfig, serviceName string, log *slog.Logger) (ShutdownFunc, error) {
	if log == nil {
		log = slog.Default()
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	if !cfg.TracingEnabled {
		log.Info("tracing configured", "tracing_enabled", false)
		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace resource failed: %w", err)
	}

	var opts []otlptracehttp.Option
	if cfg.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		log.Error("tracing init failed", "error", err)
		return noopShutdown, nil
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(Sampler(cfg.SampleRatio)),
	)
	otel.SetTracerProvider(tp)

	log.Info("tracing configured",
		"tracing_enabled", true,
		"otlp_endpoint", cfg.OTLPEndpoint,
		"sample_ratio", cfg.SampleRatio,
	)
	return tp.Shutdown, nil
}

// Sampler samples a ratio of root traces and follows the parent decision
// otherwise. An empty or invalid ratio samples everything.
func Sampler(ratio string) trace.Sampler {
	r, err := strconv.ParseFloat(ratio, 64)
	if err != nil || r < 0 || r > 1 {
		r = 1
	}
	if r == 1 {
		return trace.ParentBased(trace.AlwaysSample())
	}
	return trace.ParentBased(trace.TraceIDRatioBased(r))
}
