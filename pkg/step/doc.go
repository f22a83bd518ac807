// Package step provides the ambient step-executor handle and the memoized-step
// primitive that agentstep is built around.
//
// # Overview
//
// A step is a named unit of work whose result, once computed, is cached by the
// backing durability runtime and returned without re-execution on subsequent
// replays of the same logical run. This package defines the Executor contract,
// carries the current executor through context.Context, and offers executors
// for code running outside any durability runtime (Direct, Memo).
//
// # Usage
//
// Inside a durable run handler, install the runtime-backed executor once:
//
//	ctx := step.WithExecutor(ctx, exec)
//
// Wrapped tools and helpers then pick it up implicitly:
//
//	forecast, err := step.Durable(ctx, "fetch_weather_"+city, func(ctx context.Context) (Forecast, error) {
//	    return api.Forecast(ctx, city)
//	})
//
// Outside a durable run no executor is present and Durable executes the
// function directly, so the same code works unchanged in plain callers
// and tests.
//
// # Error Handling
//
// Errors wrapped with NonRetryable tell the durability runtime not to retry
// the step. Runtime-backed executors translate the marker into the runtime's
// native non-retryable error form.
package step
