package orchestrator

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/phishtrail/phishtrail/internal/orchestrator"

type scanMetrics struct {
	scans metric.Int64Counter
}

func newScanMetrics() *scanMetrics {
	meter := otel.Meter(instrumentationName)

	m := new(scanMetrics)
	var err error
	if m.scans, err = meter.Int64Counter(
		"phishtrail.scans.total",
		metric.WithDescription("Scan dispatches by mode and outcome"),
	); err != nil {
		otel.Handle(err)
	}
	return m
}

func (m *scanMetrics) record(ctx context.Context, mode Mode, outcome string) {
	if m.scans == nil {
		return
	}
	m.scans.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", string(mode)),
		attribute.String("outcome", outcome),
	))
}
