// Package tool wraps agent-framework tools so each invocation runs as a
// durable, memoized step.
//
// # Overview
//
// AsStep decorates any langchaingo tools.Tool: when the surrounding run
// carries an ambient step executor, the tool call is delegated to the
// executor's run-once primitive under the ID "tool_<name>" and the step
// stores a record of both input and output. Without an executor the tool
// runs directly, so wrapped tools are safe to use outside durable runs.
//
// Func builds a tools.Tool from a plain Go function that takes JSON
// arguments, with optional JSON Schema validation of the input.
//
// # Usage
//
//	fetch, _ := tool.NewFunc("fetch_sales_data", "Fetch sales metrics for a region.",
//	    func(ctx context.Context, args json.RawMessage) (any, error) {
//	        var in struct{ Region string `json:"region"` }
//	        if err := json.Unmarshal(args, &in); err != nil {
//	            return nil, err
//	        }
//	        return store.Metrics(ctx, in.Region)
//	    })
//
//	agentTools := []tools.Tool{tool.AsStep(fetch)}
package tool
