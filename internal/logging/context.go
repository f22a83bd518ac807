package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type runIDCtxKey struct{}
type agentCtxKey struct{}
type stepIDCtxKey struct{}

// WithRunID attaches the logical run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDCtxKey{}, runID)
}

// RunIDFromContext returns the run ID, or empty.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDCtxKey{}).(string)
	return id
}

// WithAgent attaches the active agent name to the context.
func WithAgent(ctx context.Context, agent string) context.Context {
	return context.WithValue(ctx, agentCtxKey{}, agent)
}

// AgentFromContext returns the active agent name, or empty.
func AgentFromContext(ctx context.Context) string {
	agent, _ := ctx.Value(agentCtxKey{}).(string)
	return agent
}

// WithStepID attaches the current step ID to the context.
func WithStepID(ctx context.Context, stepID string) context.Context {
	return context.WithValue(ctx, stepIDCtxKey{}, stepID)
}

// StepIDFromContext returns the current step ID, or empty.
func StepIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(stepIDCtxKey{}).(string)
	return id
}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)

	// Trace correlation (from OpenTelemetry)
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if runID := RunIDFromContext(ctx); runID != "" {
		fields = append(fields, zap.String("run.id", runID))
	}
	if agent := AgentFromContext(ctx); agent != "" {
		fields = append(fields, zap.String("run.agent", agent))
	}
	if stepID := StepIDFromContext(ctx); stepID != "" {
		fields = append(fields, zap.String("step.id", stepID))
	}

	return fields
}
