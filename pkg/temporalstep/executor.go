// Package temporalstep backs the step.Executor contract with Temporal.
//
// Each step runs as a local activity, so its result is recorded in workflow
// history and replay returns the cached value without re-execution. Create
// the executor inside a workflow function and install it on the context the
// agent run receives:
//
//	func AgentRunWorkflow(wctx workflow.Context, input RunInput) (*stats.FinalizedRun, error) {
//	    ctx := temporalstep.NewContext(wctx)
//	    // wrapped tools invoked below now persist as steps
//	    ...
//	}
package temporalstep

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/fyrsmithlabs/agentstep/pkg/step"
)

const (
	defaultTimeout     = 2 * time.Minute
	defaultMaxAttempts = 3
)

// Executor runs steps as Temporal local activities. It is bound to one
// workflow execution and must only be used from that workflow's goroutine.
type Executor struct {
	wctx    workflow.Context
	timeout time.Duration
	retry   *temporal.RetryPolicy
}

// Option configures New.
type Option func(*Executor)

// WithTimeout sets the per-step start-to-close timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithRetryPolicy overrides the per-step retry policy.
func WithRetryPolicy(policy *temporal.RetryPolicy) Option {
	return func(e *Executor) {
		e.retry = policy
	}
}

// New creates an executor bound to the given workflow context.
func New(wctx workflow.Context, opts ...Option) *Executor {
	e := &Executor{
		wctx:    wctx,
		timeout: defaultTimeout,
		retry:   &temporal.RetryPolicy{MaximumAttempts: defaultMaxAttempts},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewContext creates an executor and returns a context.Context carrying it as
// the ambient step executor, ready to hand to wrapped tools.
func NewContext(wctx workflow.Context, opts ...Option) context.Context {
	return step.WithExecutor(context.Background(), New(wctx, opts...))
}

// Run executes fn as a local activity. On replay the recorded result is
// decoded into result without calling fn again. Step errors marked
// step.NonRetryable surface as Temporal non-retryable application errors.
func (e *Executor) Run(_ context.Context, stepID string, fn step.Func, result any) error {
	logger := workflow.GetLogger(e.wctx)
	logger.Debug("Running durable step", "step_id", stepID)

	wctx := workflow.WithLocalActivityOptions(e.wctx, workflow.LocalActivityOptions{
		StartToCloseTimeout: e.timeout,
		RetryPolicy:         e.retry,
	})

	future := workflow.ExecuteLocalActivity(wctx, func(actx context.Context) (json.RawMessage, error) {
		v, err := fn(actx)
		if err != nil {
			if step.IsNonRetryable(err) {
				return nil, temporal.NewNonRetryableApplicationError(err.Error(), "StepError", err)
			}
			return nil, err
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("encoding step %q result: %v", stepID, err), "StepEncodeError", err)
		}
		return encoded, nil
	})

	var encoded json.RawMessage
	if err := future.Get(wctx, &encoded); err != nil {
		return fmt.Errorf("step %q: %w", stepID, err)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(encoded, result); err != nil {
		return fmt.Errorf("decoding step %q result: %w", stepID, err)
	}
	return nil
}
