package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	t.Run("counts items by kind", func(t *testing.T) {
		result := &RunResult{
			StartingAgent: "Data Analysis Agent",
			FinalAgent:    "Data Analysis Agent",
			Items: []Item{
				{Kind: ItemMessage, Agent: "Data Analysis Agent"},
				{Kind: ItemToolCall, Agent: "Data Analysis Agent", Name: "fetch_data"},
				{Kind: ItemToolCall, Agent: "Data Analysis Agent", Name: "analyze"},
				{Kind: ItemReasoning, Agent: "Data Analysis Agent"},
				{Kind: ItemMessage, Agent: "Data Analysis Agent"},
			},
			Usage: Usage{InputTokens: 1200, OutputTokens: 300},
		}

		stats := Compute(result, "gpt-4o", nil)

		assert.Equal(t, 2, stats.TotalToolCalls)
		assert.Equal(t, 2, stats.TotalMessages)
		assert.Equal(t, 1, stats.TotalReasoningSteps)
		assert.Equal(t, 5, stats.TotalItems)
		assert.Equal(t, 1200, stats.InputTokens)
		assert.Equal(t, 300, stats.OutputTokens)
		assert.Equal(t, 1500, stats.TotalTokens)
		assert.Equal(t, "gpt-4o", stats.Model)
		assert.Nil(t, stats.TotalCostUSD)
	})

	t.Run("tracks agents across handoffs", func(t *testing.T) {
		result := &RunResult{
			StartingAgent: "Triage Agent",
			FinalAgent:    "Support Agent",
			Items: []Item{
				{Kind: ItemMessage, Agent: "Triage Agent"},
				{Kind: ItemHandoff, Agent: "Triage Agent", Name: "Support Agent"},
				{Kind: ItemToolCall, Agent: "Support Agent", Name: "create_ticket"},
			},
		}

		stats := Compute(result, "gpt-4o", nil)

		assert.Equal(t, []string{"Support Agent", "Triage Agent"}, stats.AgentsInvolved)
		assert.Equal(t, 2, stats.NumAgents)
		assert.Equal(t, "Triage Agent", stats.StartingAgent)
		assert.Equal(t, "Support Agent", stats.FinalAgent)
	})

	t.Run("final agent defaults to starting agent", func(t *testing.T) {
		stats := Compute(&RunResult{StartingAgent: "Sales Agent"}, "gpt-4o", nil)
		assert.Equal(t, "Sales Agent", stats.FinalAgent)
		assert.Equal(t, []string{"Sales Agent"}, stats.AgentsInvolved)
	})

	t.Run("cost uses supplied pricing", func(t *testing.T) {
		result := &RunResult{
			StartingAgent: "Sales Agent",
			Usage:         Usage{InputTokens: 1_000_000, OutputTokens: 500_000},
		}
		table := Table{"gpt-4o": {InputPerToken: perMillion(2.50), OutputPerToken: perMillion(10.00)}}

		stats := Compute(result, "gpt-4o", table)

		require.NotNil(t, stats.TotalCostUSD)
		assert.InDelta(t, 7.50, *stats.TotalCostUSD, 1e-9)
	})

	t.Run("unknown model yields nil cost", func(t *testing.T) {
		stats := Compute(&RunResult{StartingAgent: "a"}, "some-local-model", DefaultTable())
		assert.Nil(t, stats.TotalCostUSD)
	})
}

func TestUsage(t *testing.T) {
	u := Usage{InputTokens: 10, OutputTokens: 5}
	u.Add(Usage{InputTokens: 2, OutputTokens: 3})
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 8}, u)
	assert.Equal(t, 20, u.Total())
}
