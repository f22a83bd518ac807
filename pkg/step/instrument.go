package step

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// InstrumentOption configures Instrument.
type InstrumentOption func(*instrumented)

// WithTracer sets the tracer used to create one span per step.
func WithTracer(tracer trace.Tracer) InstrumentOption {
	return func(i *instrumented) {
		i.tracer = tracer
	}
}

// WithLogger sets the logger used for per-step debug/error logs.
func WithLogger(logger *zap.Logger) InstrumentOption {
	return func(i *instrumented) {
		i.logger = logger
	}
}

// WithRegisterer registers step counters and duration histograms on reg.
func WithRegisterer(reg prometheus.Registerer) InstrumentOption {
	return func(i *instrumented) {
		i.steps = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentstep_steps_total",
			Help: "Total number of step executions by status.",
		}, []string{"status"})
		i.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentstep_step_duration_seconds",
			Help:    "Wall-clock duration of step executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step_id"})
		reg.MustRegister(i.steps, i.duration)
	}
}

// Instrument wraps an Executor with OTEL spans, structured logs, and
// Prometheus metrics per step. Telemetry failures never affect step
// execution. With no options it is a transparent pass-through.
func Instrument(next Executor, opts ...InstrumentOption) Executor {
	i := &instrumented{
		next:   next,
		tracer: noop.NewTracerProvider().Tracer("agentstep"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

type instrumented struct {
	next     Executor
	tracer   trace.Tracer
	logger   *zap.Logger
	steps    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func (i *instrumented) Run(ctx context.Context, stepID string, fn Func, result any) error {
	ctx, span := i.tracer.Start(ctx, "step.Run",
		trace.WithAttributes(attribute.String("step.id", stepID)))
	defer span.End()

	start := time.Now()
	err := i.next.Run(ctx, stepID, fn, result)
	elapsed := time.Since(start)

	if i.duration != nil {
		i.duration.WithLabelValues(stepID).Observe(elapsed.Seconds())
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if i.steps != nil {
			i.steps.WithLabelValues("error").Inc()
		}
		i.logger.Error("step failed",
			zap.String("step_id", stepID),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return err
	}

	if i.steps != nil {
		i.steps.WithLabelValues("ok").Inc()
	}
	i.logger.Debug("step completed",
		zap.String("step_id", stepID),
		zap.Duration("duration", elapsed),
	)
	return nil
}
