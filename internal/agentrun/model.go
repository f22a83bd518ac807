package agentrun

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"

	"github.com/fyrsmithlabs/agentstep/pkg/step"
)

// durableModel routes every generation through the ambient step executor, so
// the model's HTTP call runs off the workflow goroutine and its response is
// recorded as a step. On replay the recorded response is returned without
// calling the provider, which keeps the replayed agent's tool sequence
// identical to history.
//
// Generations are numbered in call order; the counter is workflow state and
// replays deterministically. The callbacks handler fires on the workflow side
// with the (possibly replayed) response, so the stats recorder sees every
// generation exactly once per pass.
type durableModel struct {
	next    llms.Model
	handler callbacks.Handler
	calls   int
}

func newDurableModel(next llms.Model, handler callbacks.Handler) *durableModel {
	return &durableModel{next: next, handler: handler}
}

// GenerateContent implements llms.Model.
func (m *durableModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	stepID := fmt.Sprintf("llm_generation_%d", m.calls)

	resp, err := step.Durable(ctx, stepID, func(ctx context.Context) (*llms.ContentResponse, error) {
		return m.next.GenerateContent(ctx, messages, opts...)
	})
	if err != nil {
		return nil, err
	}

	if m.handler != nil {
		m.handler.HandleLLMGenerateContentEnd(ctx, resp)
	}
	return resp, nil
}

// Call implements llms.Model.
func (m *durableModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, opts...)
}
