package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records lookup metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	RecordLookup(ctx context.Context, meta LookupMeta, duration time.Duration, hit bool)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	missCount    metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates lookup instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"secret.lookup.total",
		metric.WithDescription("Total number of provider lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	missCount, err := meter.Int64Counter(
		"secret.lookup.misses",
		metric.WithDescription("Provider lookups that found no value"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"secret.lookup.duration_ms",
		metric.WithDescription("Provider lookup duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		missCount:    missCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordLookup(ctx context.Context, meta LookupMeta, duration time.Duration, hit bool) {
	attrs := append(meta.attributes(), attribute.Bool("secret.hit", hit))
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if !hit {
		m.missCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}
