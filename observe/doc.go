// Package observe provides observability primitives for secret lookups.
//
// It is a pure instrumentation library: no resolution logic and no I/O
// beyond exporter setup. Consumers wrap provider lookups with Middleware
// to get a span, metrics and a debug log line per lookup. Secret values
// never reach telemetry; only names, providers, keys and hit/miss do.
package observe
