package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/agentstep/pkg/step"
)

// fakeTool is a minimal tools.Tool with scripted behavior.
type fakeTool struct {
	name   string
	calls  int
	output string
	err    error
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake tool for tests" }

func (f *fakeTool) Call(ctx context.Context, input string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

// echoTool returns its input unchanged.
type echoTool struct {
	name string
}

func (e *echoTool) Name() string        { return e.name }
func (e *echoTool) Description() string { return "echoes its input" }

func (e *echoTool) Call(ctx context.Context, input string) (string, error) {
	return input, nil
}

func TestAsStep(t *testing.T) {
	t.Run("preserves name and description", func(t *testing.T) {
		wrapped := AsStep(&fakeTool{name: "fetch_data"})
		assert.Equal(t, "fetch_data", wrapped.Name())
		assert.Equal(t, "fake tool for tests", wrapped.Description())
	})

	t.Run("memoizes calls across replays", func(t *testing.T) {
		inner := &fakeTool{name: "fetch_data", output: "result"}
		wrapped := AsStep(inner)
		memo := step.NewMemo()
		ctx := step.WithExecutor(context.Background(), memo)

		first, err := wrapped.Call(ctx, `{"source":"sales"}`)
		require.NoError(t, err)

		memo.Replay()
		second, err := wrapped.Call(ctx, `{"source":"sales"}`)
		require.NoError(t, err)

		assert.Equal(t, "result", first)
		assert.Equal(t, "result", second)
		assert.Equal(t, 1, inner.calls, "replayed call must hit the step cache")
	})

	t.Run("repeated calls with different inputs run fresh", func(t *testing.T) {
		wrapped := AsStep(&echoTool{name: "fetch_data"})
		ctx := step.WithExecutor(context.Background(), step.NewMemo())

		first, err := wrapped.Call(ctx, `{"quarter":"q1"}`)
		require.NoError(t, err)
		second, err := wrapped.Call(ctx, `{"quarter":"q2"}`)
		require.NoError(t, err)

		assert.JSONEq(t, `{"quarter":"q1"}`, first)
		assert.JSONEq(t, `{"quarter":"q2"}`, second)
	})

	t.Run("step stores input and output record", func(t *testing.T) {
		memo := step.NewMemo()
		ctx := step.WithExecutor(context.Background(), memo)
		wrapped := AsStep(&fakeTool{name: "analyze", output: `{"growth":0.25}`})

		_, err := wrapped.Call(ctx, `{"q4":150000}`)
		require.NoError(t, err)

		memo.Replay()
		var rec Record
		require.NoError(t, memo.Run(ctx, "tool_analyze", func(ctx context.Context) (any, error) {
			t.Fatal("cached step must not re-execute")
			return nil, nil
		}, &rec))
		assert.Equal(t, map[string]any{"q4": float64(150000)}, rec.Input)
		assert.Equal(t, map[string]any{"growth": 0.25}, rec.Output)
	})

	t.Run("structured cached output is re-encoded for the agent", func(t *testing.T) {
		memo := step.NewMemo()
		ctx := step.WithExecutor(context.Background(), memo)
		wrapped := AsStep(&fakeTool{name: "report", output: `{"saved":true}`})

		out, err := wrapped.Call(ctx, "weekly")
		require.NoError(t, err)

		memo.Replay()
		out2, err := wrapped.Call(ctx, "weekly")
		require.NoError(t, err)

		assert.JSONEq(t, `{"saved":true}`, out)
		assert.JSONEq(t, `{"saved":true}`, out2)
	})

	t.Run("runs directly without executor", func(t *testing.T) {
		inner := &fakeTool{name: "fetch_data", output: "direct"}
		wrapped := AsStep(inner)

		out, err := wrapped.Call(context.Background(), "input")
		require.NoError(t, err)
		out2, err := wrapped.Call(context.Background(), "input")
		require.NoError(t, err)

		assert.Equal(t, "direct", out)
		assert.Equal(t, "direct", out2)
		assert.Equal(t, 2, inner.calls, "no executor means no memoization")
	})

	t.Run("failures become non-retryable", func(t *testing.T) {
		cause := errors.New("connection refused")
		wrapped := AsStep(&fakeTool{name: "flaky", err: cause})
		ctx := step.WithExecutor(context.Background(), step.NewMemo())

		_, err := wrapped.Call(ctx, "anything")
		require.Error(t, err)
		assert.True(t, step.IsNonRetryable(err))
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "flaky failed")
	})

	t.Run("non-retryable errors are not double-wrapped", func(t *testing.T) {
		cause := step.NonRetryable(errors.New("bad input"))
		wrapped := AsStep(&fakeTool{name: "strict", err: cause})

		_, err := wrapped.Call(context.Background(), "anything")
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.NotContains(t, err.Error(), "strict failed")
	})
}
