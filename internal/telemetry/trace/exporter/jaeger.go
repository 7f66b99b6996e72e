package exporter

import (
	"go.opentelemetry.io/otel/exporters/jaeger"
)

func NewJaeger(endpoint string) (*jaeger.Exporter, error) {
	traceExp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, err
	}
	return traceExp, nil
}
