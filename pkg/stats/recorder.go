package stats

import (
	"context"
	"sync"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/fyrsmithlabs/agentstep/pkg/step"
)

// Recorder builds a RunResult while a langchaingo agent executes. Attach it
// with agents.WithCallbacksHandler. Safe for concurrent callbacks.
type Recorder struct {
	callbacks.SimpleHandler

	mu      sync.Mutex
	current string
	result  RunResult
}

// NewRecorder creates a recorder for a run starting with the named agent.
func NewRecorder(startingAgent string) *Recorder {
	return &Recorder{
		current: startingAgent,
		result: RunResult{
			StartingAgent: startingAgent,
			FinalAgent:    startingAgent,
		},
	}
}

// SetAgent records a handoff to another agent. Subsequent items are
// attributed to it.
func (r *Recorder) SetAgent(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" || name == r.current {
		return
	}
	r.result.Items = append(r.result.Items, Item{
		Kind:  ItemHandoff,
		Agent: r.current,
		Name:  name,
	})
	r.current = name
	r.result.FinalAgent = name
}

// HandleLLMGenerateContentEnd accumulates token usage and message items from
// each model response.
func (r *Recorder) HandleLLMGenerateContentEnd(ctx context.Context, res *llms.ContentResponse) {
	if res == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, choice := range res.Choices {
		if choice == nil {
			continue
		}
		r.result.Usage.Add(usageFromInfo(choice.GenerationInfo))
		if choice.Content != "" {
			r.result.Items = append(r.result.Items, Item{
				Kind:    ItemMessage,
				Agent:   r.current,
				Content: choice.Content,
			})
		}
	}
}

// HandleAgentAction records one tool call.
func (r *Recorder) HandleAgentAction(ctx context.Context, action schema.AgentAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result.Items = append(r.result.Items, Item{
		Kind:    ItemToolCall,
		Agent:   r.current,
		Name:    action.Tool,
		Content: step.Normalize(action.ToolInput),
	})
}

// HandleAgentFinish captures the run's final output.
func (r *Recorder) HandleAgentFinish(ctx context.Context, finish schema.AgentFinish) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if out, ok := finish.ReturnValues["output"]; ok {
		r.result.FinalOutput = out
	}
}

// Result returns a snapshot of the recorded run.
func (r *Recorder) Result() *RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.result
	snapshot.Items = make([]Item, len(r.result.Items))
	copy(snapshot.Items, r.result.Items)
	return &snapshot
}

// usageFromInfo extracts token counts from a choice's generation info.
// langchaingo providers report ints under PromptTokens/CompletionTokens.
func usageFromInfo(info map[string]any) Usage {
	return Usage{
		InputTokens:  intFromInfo(info, "PromptTokens", "prompt_tokens", "input_tokens"),
		OutputTokens: intFromInfo(info, "CompletionTokens", "completion_tokens", "output_tokens"),
	}
}

func intFromInfo(info map[string]any, keys ...string) int {
	for _, key := range keys {
		v, ok := info[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}
