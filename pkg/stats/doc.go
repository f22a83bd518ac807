// Package stats aggregates token, cost, and tool-call statistics from a
// completed agent run.
//
// # Overview
//
// RunResult is a framework-neutral trace of one agent run: its final output,
// an ordered list of items (messages, tool calls, reasoning steps, handoffs)
// and accumulated token usage. Compute reduces a RunResult to RunStats, a
// flat summary suitable for step storage and dashboards. FinalizeRun records
// the summary as a final "run_stats" step via the ambient executor and
// returns the finalized run.
//
// Recorder bridges langchaingo: attach it as a callbacks handler and it
// builds the RunResult while the agent executes.
//
// # Usage
//
//	rec := stats.NewRecorder("Sales Agent")
//	executor, _ := agents.Initialize(llm, agentTools, agents.ZeroShotReactDescription,
//	    agents.WithCallbacksHandler(rec))
//	answer, err := chains.Run(ctx, executor, prompt)
//	// ...
//	result := rec.Result()
//	result.FinalOutput = answer
//	finalized, err := stats.FinalizeRun(ctx, result, stats.WithModel("gpt-4o"))
package stats
