// Package agentrun hosts the worker's agent run workflow.
//
// The workflow drives a langchaingo agent over the demo sales toolset. Every
// tool invocation and every model generation persists as a durable step in
// workflow history, so a worker crash mid-run resumes from recorded results
// without repeating completed tool calls or generations. All network IO runs
// in local activities; the workflow goroutine itself never blocks on it.
package agentrun

import (
	"fmt"
	"time"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.temporal.io/sdk/workflow"

	"github.com/fyrsmithlabs/agentstep/pkg/stats"
	"github.com/fyrsmithlabs/agentstep/pkg/temporalstep"
)

// StartingAgent is the agent name attributed to the demo run.
const StartingAgent = "Sales Agent"

const (
	defaultMaxIterations = 8
	defaultStepTimeout   = 2 * time.Minute
)

// RunInput is the workflow's input. The API key travels as a plain string so
// it survives workflow payload encoding.
type RunInput struct {
	Prompt        string        `json:"prompt"`
	Model         string        `json:"model"`
	OpenAIAPIKey  string        `json:"openai_api_key"`
	BaseURL       string        `json:"base_url"`
	MaxIterations int           `json:"max_iterations"`
	StepTimeout   time.Duration `json:"step_timeout"`
}

// newLLM builds the provider client for a run. The returned model is always
// wrapped in durableModel before use. Overridable in tests.
var newLLM = func(input RunInput) (llms.Model, error) {
	opts := []openai.Option{openai.WithModel(input.Model)}
	if input.OpenAIAPIKey != "" {
		opts = append(opts, openai.WithToken(input.OpenAIAPIKey))
	}
	if input.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(input.BaseURL))
	}
	return openai.New(opts...)
}

// AgentRunWorkflow executes one agent run and returns the finalized result,
// final output plus aggregate stats. The stats are also recorded as the
// trailing "run_stats" step.
func AgentRunWorkflow(wctx workflow.Context, input RunInput) (*stats.FinalizedRun, error) {
	logger := workflow.GetLogger(wctx)

	if input.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	if input.Model == "" {
		input.Model = stats.DefaultModel
	}
	if input.MaxIterations <= 0 {
		input.MaxIterations = defaultMaxIterations
	}
	if input.StepTimeout <= 0 {
		input.StepTimeout = defaultStepTimeout
	}

	logger.Info("Starting agent run", "model", input.Model, "max_iterations", input.MaxIterations)

	ctx := temporalstep.NewContext(wctx, temporalstep.WithTimeout(input.StepTimeout))

	reports := &ReportSink{}
	toolset, err := SalesTools(reports)
	if err != nil {
		return nil, fmt.Errorf("building toolset: %w", err)
	}

	recorder := stats.NewRecorder(StartingAgent)

	llm, err := newLLM(input)
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}

	executor, err := agents.Initialize(
		newDurableModel(llm, recorder),
		toolset,
		agents.ZeroShotReactDescription,
		agents.WithMaxIterations(input.MaxIterations),
		agents.WithCallbacksHandler(recorder),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing agent: %w", err)
	}

	output, err := chains.Run(ctx, executor, input.Prompt)
	if err != nil {
		return nil, fmt.Errorf("agent run: %w", err)
	}

	result := recorder.Result()
	if result.FinalOutput == nil {
		result.FinalOutput = output
	}

	finalized, err := stats.FinalizeRun(ctx, result, stats.WithModel(input.Model))
	if err != nil {
		return nil, fmt.Errorf("finalizing run: %w", err)
	}

	logger.Info("Agent run finished",
		"tool_calls", finalized.Stats.TotalToolCalls,
		"total_tokens", finalized.Stats.TotalTokens,
		"reports_saved", len(reports.Reports))

	return finalized, nil
}
