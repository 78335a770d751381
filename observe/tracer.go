package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LookupMeta describes one provider lookup for telemetry purposes.
type LookupMeta struct {
	Secret   string // secret name being resolved, e.g. keystore_password
	Provider string // provider instance name, e.g. env
	Key      string // key asked of the provider, e.g. KEYSTORE_PASSWORD
}

// SpanName returns the deterministic span name for this lookup.
// Format: secret.lookup.<provider>
func (m LookupMeta) SpanName() string {
	return "secret.lookup." + m.Provider
}

func (m LookupMeta) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("secret.name", m.Secret),
		attribute.String("secret.provider", m.Provider),
	}
}

// Tracer wraps OpenTelemetry tracing with lookup span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	StartSpan(ctx context.Context, meta LookupMeta) (context.Context, trace.Span)

	// EndSpan records whether the lookup found a value and ends the span.
	EndSpan(span trace.Span, hit bool)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta LookupMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.String("secret.key", meta.Key))
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span. A miss is not an error.
func (t *tracerImpl) EndSpan(span trace.Span, hit bool) {
	span.SetAttributes(attribute.Bool("secret.hit", hit))
	span.SetStatus(codes.Ok, "")
	span.End()
}
