package server

import (
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"audio_conversion/config"
	ttrace "audio_conversion/internal/telemetry/trace"
	traceExporter "audio_conversion/internal/telemetry/trace/exporter"
)

func (s *Server) InitGlobalProvider(name string, cfg *config.Config) {
	var (
		spanExporter sdktrace.SpanExporter
		err          error
	)

	if cfg.OTEL.OTLPEndpoint != "" {
		spanExporter, err = traceExporter.NewOTLP(cfg.OTEL.OTLPEndpoint)
	} else {
		spanExporter, err = traceExporter.NewJaeger(cfg.OTEL.JaegerEndpoint)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("failed initializing the tracer exporter")
	}

	tracerProvider, tracerProviderCloseFn, err := ttrace.NewTraceProviderBuilder(name).
		SetExporter(spanExporter).
		Build()
	if err != nil {
		log.Fatal().Err(err).Msgf("failed initializing the tracer provider")
	}
	s.traceProviderCloseFn = append(s.traceProviderCloseFn, tracerProviderCloseFn)

	// set global propagator to tracecontext (the default is no-op).
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tracerProvider)
}
