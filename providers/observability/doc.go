// Package observability defines the interfaces and semantic conventions used
// for tracing, metrics and structured logging across resflavors.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into a single
// injectable dependency; a nil Provider means observability is off. The
// active [Span] travels through a [context.Context] via [ContextWithSpan] and
// [SpanFromContext], so that code deep in the parsing pipeline can attach
// events to the lease fetch it belongs to.
//
// semconv.go lists the attribute keys, span names and metric names.
package observability
