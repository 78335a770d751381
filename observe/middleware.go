package observe

import (
	"context"
	"time"
)

// LookupFunc is the signature Middleware wraps.
type LookupFunc func(ctx context.Context, meta LookupMeta) (string, bool)

// Middleware wraps provider lookups with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a LookupFunc safe for concurrent use.
//   - Context: propagates context through tracing spans.
//   - Ownership: values pass through unchanged and are never recorded.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware with the given components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps fn with a span, metrics and a debug log line.
func (m *Middleware) Wrap(fn LookupFunc) LookupFunc {
	return func(ctx context.Context, meta LookupMeta) (string, bool) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		value, hit := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, hit)
		m.metrics.RecordLookup(ctx, meta, duration, hit)
		m.logger.Debug(ctx, "secret lookup",
			F("secret.name", meta.Secret),
			F("secret.provider", meta.Provider),
			F("secret.key", meta.Key),
			F("hit", hit),
			F("duration_ms", float64(duration.Microseconds())/1000),
		)

		return value, hit
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
