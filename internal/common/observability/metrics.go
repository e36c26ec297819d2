// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	toolCounter   otelmetric.Int64Counter
	toolDuration  otelmetric.Float64Histogram
	runSteps      otelmetric.Int64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	toolCounter, _ := meter.Int64Counter(
		"tools.invoked",
		otelmetric.WithDescription("Number of tool invocations"),
	)

	toolDuration, _ := meter.Float64Histogram(
		"tools.duration",
		otelmetric.WithDescription("Tool execution duration"),
		otelmetric.WithUnit("ms"),
	)

	runSteps, _ := meter.Int64Histogram(
		"agent.run.steps",
		otelmetric.WithDescription("Model turns taken per completed agent run"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		toolCounter:   toolCounter,
		toolDuration:  toolDuration,
		runSteps:      runSteps,
	}
}

func (o *Observability) RecordToolInvocation(ctx context.Context, tool, status string) {
	if o.toolCounter != nil {
		o.toolCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordToolDuration(ctx context.Context, tool string, duration time.Duration) {
	if o.toolDuration != nil {
		o.toolDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("tool", tool),
		))
	}
}

func (o *Observability) RecordRunSteps(ctx context.Context, steps int) {
	if o.runSteps != nil {
		o.runSteps.Record(ctx, int64(steps))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
