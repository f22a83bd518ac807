package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/fyrsmithlabs/agentstep/pkg/step"
)

// HandlerFunc is the body of a function tool. args is the call's input as
// JSON; non-JSON input from the agent is delivered as a JSON string.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Func adapts a plain Go function to the langchaingo tools.Tool interface.
// String results are returned to the agent as-is; any other result is
// JSON-encoded.
type Func struct {
	name        string
	description string
	schema      *gojsonschema.Schema
	fn          HandlerFunc
}

// FuncOption configures NewFunc.
type FuncOption func(*funcOptions)

type funcOptions struct {
	schema json.RawMessage
}

// WithSchema attaches a JSON Schema that every call's input must satisfy.
// Invalid input fails the call with a non-retryable error before the handler
// runs.
func WithSchema(schema json.RawMessage) FuncOption {
	return func(o *funcOptions) {
		o.schema = schema
	}
}

// NewFunc creates a function tool.
func NewFunc(name, description string, fn HandlerFunc, opts ...FuncOption) (*Func, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name cannot be empty")
	}
	if fn == nil {
		return nil, fmt.Errorf("tool %q: handler cannot be nil", name)
	}

	var options funcOptions
	for _, opt := range opts {
		opt(&options)
	}

	f := &Func{
		name:        name,
		description: description,
		fn:          fn,
	}

	if options.schema != nil {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(options.schema))
		if err != nil {
			return nil, fmt.Errorf("tool %q: compiling input schema: %w", name, err)
		}
		f.schema = compiled
	}

	return f, nil
}

// Name implements tools.Tool.
func (f *Func) Name() string {
	return f.name
}

// Description implements tools.Tool.
func (f *Func) Description() string {
	return f.description
}

// Call implements tools.Tool.
func (f *Func) Call(ctx context.Context, input string) (string, error) {
	args := normalizeArgs(input)

	if f.schema != nil {
		result, err := f.schema.Validate(gojsonschema.NewBytesLoader(args))
		if err != nil {
			return "", step.NonRetryable(fmt.Errorf("%s: validating input: %w", f.name, err))
		}
		if !result.Valid() {
			return "", step.NonRetryable(fmt.Errorf("%s: invalid input: %s", f.name, formatSchemaErrors(result)))
		}
	}

	out, err := f.fn(ctx, args)
	if err != nil {
		return "", err
	}
	return renderOutput(out)
}

// normalizeArgs turns the framework-supplied input string into JSON. Agents
// sometimes pass bare strings instead of JSON objects; those are encoded as a
// JSON string so handlers always receive valid JSON.
func normalizeArgs(input string) json.RawMessage {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return json.RawMessage(`{}`)
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(input)
	return quoted
}

func formatSchemaErrors(result *gojsonschema.Result) string {
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return strings.Join(msgs, "; ")
}
