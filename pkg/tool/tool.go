package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/tools"

	"github.com/fyrsmithlabs/agentstep/pkg/step"
)

// Record is what a tool step stores in the durability runtime: the call's
// input alongside its output, both normalized for display. The agent only
// ever sees the output.
type Record struct {
	Input  any `json:"input"`
	Output any `json:"output"`
}

// AsStep wraps a tool so each call runs as a memoized step named
// "tool_<name>". Tool failures are marked non-retryable so the runtime does
// not retry a deterministic failure forever; errors already carrying the
// marker pass through untouched. Without an ambient executor the tool runs
// directly with identical output.
func AsStep(t tools.Tool) tools.Tool {
	return &stepTool{next: t}
}

type stepTool struct {
	next tools.Tool
}

func (s *stepTool) Name() string {
	return s.next.Name()
}

func (s *stepTool) Description() string {
	return s.next.Description()
}

func (s *stepTool) Call(ctx context.Context, input string) (string, error) {
	invoke := func(ctx context.Context) (any, error) {
		output, err := s.next.Call(ctx, input)
		if err != nil {
			if step.IsNonRetryable(err) {
				return nil, err
			}
			return nil, step.NonRetryable(fmt.Errorf("%s failed: %w", s.next.Name(), err))
		}
		return Record{
			Input:  step.Normalize(input),
			Output: step.Normalize(output),
		}, nil
	}

	exec := step.FromContext(ctx)
	if exec == nil {
		v, err := invoke(ctx)
		if err != nil {
			return "", err
		}
		return renderOutput(v.(Record).Output)
	}

	var rec Record
	if err := exec.Run(ctx, "tool_"+s.next.Name(), invoke, &rec); err != nil {
		return "", err
	}
	return renderOutput(rec.Output)
}

// renderOutput converts a stored output back into the string form the agent
// framework expects. Structured outputs come back from the cache as decoded
// JSON values and are re-encoded.
func renderOutput(v any) (string, error) {
	switch out := v.(type) {
	case nil:
		return "", nil
	case string:
		return out, nil
	default:
		encoded, err := json.Marshal(out)
		if err != nil {
			return "", fmt.Errorf("encoding tool output: %w", err)
		}
		return string(encoded), nil
	}
}
