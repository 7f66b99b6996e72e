package trace

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// CloseFunc flushes and shuts down a provider.
type CloseFunc func(ctx context.Context) error

type TraceProviderBuilder struct {
	name     string
	exporter sdktrace.SpanExporter
}

func NewTraceProviderBuilder(name string) *TraceProviderBuilder {
	return &TraceProviderBuilder{name: name}
}

func (b *TraceProviderBuilder) SetExporter(exp sdktrace.SpanExporter) *TraceProviderBuilder {
	b.exporter = exp
	return b
}

func (b *TraceProviderBuilder) Build() (*sdktrace.TracerProvider, CloseFunc, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(b.name)),
	)
	if err != nil {
		return nil, nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(b.exporter),
		sdktrace.WithResource(res),
	)

	return provider, provider.Shutdown, nil
}
