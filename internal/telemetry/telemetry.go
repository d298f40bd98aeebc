// Package telemetry configures OpenTelemetry tracing for the API server.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/replaydeck/replaydeck/pkg/env"
)

const (
	serviceName    = "replay-api"
	serviceVersion = "1.0.0"
)

// Init initializes OpenTelemetry tracing. When tracing is disabled it
// returns a no-op shutdown function. The span exporter is selected by the
// standard OTEL_TRACES_EXPORTER environment variable.
func Init(ctx context.Context) (func(), error) {
	if !env.TracingEnabled.Get() {
		return func() {}, nil
	}

	resource := sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)

	traceExporter, err := autoexport.NewSpanExporter(ctx)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(resource),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tracerProvider.Shutdown(ctx)
	}, nil
}
