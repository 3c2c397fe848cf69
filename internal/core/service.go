// Package core holds the student and simulation services. Services own their
// store, and every operation is traced, timed and logged.
package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "mockapi/internal/core"

// ServiceOption configures optional service dependencies.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	logger     zerolog.Logger
	metrics    MetricsRecorder
	tracer     trace.Tracer
	now        func() time.Time
	lookupMode LookupMode
	updateMode UpdateMode
}

func newServiceConfig(opts []ServiceOption) serviceConfig {
	cfg := serviceConfig{
		logger:     zerolog.Nop(),
		metrics:    noopMetricsRecorder{},
		tracer:     tracenoop.NewTracerProvider().Tracer(instrumentationName),
		now:        time.Now,
		lookupMode: LookupScan,
		updateMode: UpdateMerge,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLogger sets the structured logger used by the service.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

// WithMetricsRecorder sets the operation metrics sink.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(cfg *serviceConfig) {
		if m != nil {
			cfg.metrics = m
		}
	}
}

// WithTracer sets the tracer spans are started on.
func WithTracer(t trace.Tracer) ServiceOption {
	return func(cfg *serviceConfig) {
		if t != nil {
			cfg.tracer = t
		}
	}
}

// WithClock overrides the time source used for operation timing.
func WithClock(now func() time.Time) ServiceOption {
	return func(cfg *serviceConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithLookupMode selects how students are matched by name.
func WithLookupMode(mode LookupMode) ServiceOption {
	return func(cfg *serviceConfig) { cfg.lookupMode = mode }
}

// WithUpdateMode selects how a patch is applied to a stored student.
func WithUpdateMode(mode UpdateMode) ServiceOption {
	return func(cfg *serviceConfig) { cfg.updateMode = mode }
}

// run wraps fn in a span, records its duration and outcome, and logs it at
// debug level. The error from fn is returned unchanged.
func (c serviceConfig) run(ctx context.Context, op string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(attrs...))
	started := c.now()
	err := fn(ctx)
	elapsed := c.now().Sub(started)

	c.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	evt := c.logger.Debug()
	if err != nil {
		evt = evt.Err(err)
	}
	evt.Str("operation", op).Dur("duration", elapsed).Msg("service operation")
	return err
}
