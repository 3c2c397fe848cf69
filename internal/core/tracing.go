package core

import (
	"context"

	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"mockapi/internal/config"
)

// NewTracerProvider returns the tracer provider described by cfg and its
// shutdown function. Disabled tracing yields a no-op provider. Enabled
// tracing samples by ratio and writes finished spans to logger.
func NewTracerProvider(cfg config.TracingConfig, logger zerolog.Logger) (trace.TracerProvider, func(context.Context) error) {
	if !cfg.Enabled {
		return tracenoop.NewTracerProvider(), func(context.Context) error { return nil }
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(NewLogSpanExporter(logger.With().Str("service", cfg.ServiceName).Logger())),
	)
	return tp, tp.Shutdown
}

// LogSpanExporter writes finished spans as structured log records.
type LogSpanExporter struct {
	logger zerolog.Logger
}

// NewLogSpanExporter returns an exporter logging at debug level.
func NewLogSpanExporter(logger zerolog.Logger) *LogSpanExporter {
	return &LogSpanExporter{logger: logger}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		evt := e.logger.Debug().
			Str("trace_id", s.SpanContext().TraceID().String()).
			Str("span_id", s.SpanContext().SpanID().String()).
			Str("span", s.Name()).
			Dur("duration", s.EndTime().Sub(s.StartTime())).
			Str("status", s.Status().Code.String())
		for _, kv := range s.Attributes() {
			evt = evt.Str(string(kv.Key), kv.Value.Emit())
		}
		evt.Msg("span")
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogSpanExporter) Shutdown(context.Context) error { return nil }
