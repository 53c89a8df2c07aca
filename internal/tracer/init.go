package tracer

import (
	"context"
	"log"

	"chatpulse/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const defaultServiceName = "chatpulse"

// Resource attributes describing how this instance is wired.
const (
	AttrHistoryBackend = attribute.Key("chatpulse.history.backend")
	AttrSyncConfigured = attribute.Key("chatpulse.sync.configured")
	AttrNatsEnabled    = attribute.Key("chatpulse.nats.enabled")
)

// InitTracer exports spans over OTLP HTTP to cfg.App.OtelEndpoint and returns
// the shutdown function to call on exit. With tracing disabled, or when the
// exporter cannot be built, the returned function does nothing.
func InitTracer(cfg *config.Config) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !cfg.App.OtelEnabled {
		log.Println("OpenTelemetry tracing is disabled (set OTEL_ENABLED=true to enable)")
		return noop
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.App.OtelEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("Warning: Failed to create OTLP exporter: %v (tracing disabled)", err)
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(NewResource(cfg)),
	)
	otel.SetTracerProvider(tp)
	log.Printf("OpenTelemetry tracer initialized (endpoint: %s, service: %s)", cfg.App.OtelEndpoint, serviceName(cfg))

	return tp.Shutdown
}

// NewResource names the service and records its environment and backends so
// traces from differently wired instances can be told apart.
func NewResource(cfg *config.Config) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName(cfg)),
		semconv.DeploymentEnvironment(cfg.App.Environment),
		AttrHistoryBackend.String(cfg.History.Backend),
		AttrSyncConfigured.Bool(cfg.Sync.BaseURL != ""),
		AttrNatsEnabled.Bool(cfg.App.NatsURL != ""),
	)
}

func serviceName(cfg *config.Config) string {
	if cfg.App.OtelServiceName == "" {
		return defaultServiceName
	}
	return cfg.App.OtelServiceName
}
