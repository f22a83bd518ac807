package stats

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/agentstep/pkg/step"
)

// StepID is the step under which run statistics are recorded.
const StepID = "run_stats"

// DefaultModel is assumed when no model is supplied.
const DefaultModel = "gpt-4o"

// FinalizedRun is the result of a finalized agent run.
type FinalizedRun struct {
	FinalOutput any      `json:"final_output"`
	Stats       RunStats `json:"stats"`
}

// Option configures FinalizeRun.
type Option func(*options)

type options struct {
	model   string
	pricing Table
}

// WithModel sets the model name used for cost calculation.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithPricing overrides the pricing table. Pass nil to disable cost
// calculation entirely.
func WithPricing(table Table) Option {
	return func(o *options) {
		o.pricing = table
	}
}

// FinalizeRun computes aggregate stats for a completed run and records them
// under the "run_stats" step via the ambient executor, so the runtime's run
// inspector shows the summary alongside the tool steps. Without an ambient
// executor the stats are still computed and returned, nothing is recorded.
func FinalizeRun(ctx context.Context, result *RunResult, opts ...Option) (*FinalizedRun, error) {
	if result == nil {
		return nil, fmt.Errorf("run result cannot be nil")
	}

	cfg := options{
		model:   DefaultModel,
		pricing: DefaultTable(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	runStats := Compute(result, cfg.model, cfg.pricing)

	if exec := step.FromContext(ctx); exec != nil {
		err := exec.Run(ctx, StepID, func(ctx context.Context) (any, error) {
			return runStats, nil
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("recording run stats: %w", err)
		}
	}

	return &FinalizedRun{
		FinalOutput: step.Normalize(result.FinalOutput),
		Stats:       runStats,
	}, nil
}
