package step

import "context"

type executorCtxKey struct{}

// WithExecutor returns a context carrying exec as the ambient step executor.
// Install it once at the start of a durable run handler; every wrapped tool
// invocation reads it implicitly.
func WithExecutor(ctx context.Context, exec Executor) context.Context {
	return context.WithValue(ctx, executorCtxKey{}, exec)
}

// FromContext returns the ambient executor, or nil when the context is not
// part of a durable run.
func FromContext(ctx context.Context) Executor {
	exec, _ := ctx.Value(executorCtxKey{}).(Executor)
	return exec
}

// Durable runs fn as a memoized step when an ambient executor is present and
// directly otherwise. stepID must be deterministic across replays of the same
// logical run for memoization to hold.
//
//	forecast, err := step.Durable(ctx, "weather_"+city, func(ctx context.Context) (Forecast, error) {
//	    return api.Forecast(ctx, city)
//	})
func Durable[T any](ctx context.Context, stepID string, fn func(ctx context.Context) (T, error)) (T, error) {
	exec := FromContext(ctx)
	if exec == nil {
		return fn(ctx)
	}
	var out T
	err := exec.Run(ctx, stepID, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}, &out)
	return out, err
}
