package stats

import "sort"

// ItemKind classifies a single item in an agent run's trace.
type ItemKind string

const (
	// ItemMessage is a model output message.
	ItemMessage ItemKind = "message"
	// ItemToolCall is one tool invocation.
	ItemToolCall ItemKind = "tool_call"
	// ItemReasoning is a model reasoning step.
	ItemReasoning ItemKind = "reasoning"
	// ItemHandoff is a transfer of control between agents.
	ItemHandoff ItemKind = "handoff"
)

// Item is one entry in an agent run's trace.
type Item struct {
	Kind    ItemKind `json:"kind"`
	Agent   string   `json:"agent,omitempty"`
	Name    string   `json:"name,omitempty"`
	Content any      `json:"content,omitempty"`
}

// Usage holds token counts for an agent run.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// RunResult is a framework-neutral trace of one completed agent run.
type RunResult struct {
	FinalOutput   any
	Items         []Item
	Usage         Usage
	StartingAgent string
	FinalAgent    string
}

// RunStats is the aggregate summary of an agent run.
type RunStats struct {
	TotalToolCalls      int      `json:"total_tool_calls"`
	TotalMessages       int      `json:"total_messages"`
	TotalReasoningSteps int      `json:"total_reasoning_steps"`
	TotalItems          int      `json:"total_items"`
	AgentsInvolved      []string `json:"agents_involved"`
	NumAgents           int      `json:"num_agents"`
	StartingAgent       string   `json:"starting_agent"`
	FinalAgent          string   `json:"final_agent"`
	InputTokens         int      `json:"input_tokens"`
	OutputTokens        int      `json:"output_tokens"`
	TotalTokens         int      `json:"total_tokens"`
	TotalCostUSD        *float64 `json:"total_cost_usd"`
	Model               string   `json:"model"`
}

// Compute reduces a run trace to RunStats. It is pure: no IO and no executor
// access. pricing may be nil, in which case cost stays nil.
func Compute(result *RunResult, model string, pricing Table) RunStats {
	stats := RunStats{
		TotalItems:    len(result.Items),
		StartingAgent: result.StartingAgent,
		FinalAgent:    result.FinalAgent,
		InputTokens:   result.Usage.InputTokens,
		OutputTokens:  result.Usage.OutputTokens,
		TotalTokens:   result.Usage.Total(),
		Model:         model,
	}
	if stats.FinalAgent == "" {
		stats.FinalAgent = result.StartingAgent
	}

	agents := map[string]struct{}{}
	if result.StartingAgent != "" {
		agents[result.StartingAgent] = struct{}{}
	}
	if stats.FinalAgent != "" {
		agents[stats.FinalAgent] = struct{}{}
	}

	for _, item := range result.Items {
		switch item.Kind {
		case ItemToolCall:
			stats.TotalToolCalls++
		case ItemMessage:
			stats.TotalMessages++
		case ItemReasoning:
			stats.TotalReasoningSteps++
		}
		if item.Agent != "" {
			agents[item.Agent] = struct{}{}
		}
	}

	stats.AgentsInvolved = make([]string, 0, len(agents))
	for name := range agents {
		stats.AgentsInvolved = append(stats.AgentsInvolved, name)
	}
	sort.Strings(stats.AgentsInvolved)
	stats.NumAgents = len(stats.AgentsInvolved)

	stats.TotalCostUSD = pricing.Cost(model, result.Usage)

	return stats
}
