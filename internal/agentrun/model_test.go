package agentrun

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/agentstep/pkg/stats"
	"github.com/fyrsmithlabs/agentstep/pkg/step"
)

func TestDurableModel(t *testing.T) {
	t.Run("each generation is its own step", func(t *testing.T) {
		fake := &scriptedLLM{responses: []string{"one", "two"}}
		memo := step.NewMemo()
		ctx := step.WithExecutor(context.Background(), memo)

		m := newDurableModel(fake, nil)
		first, err := m.GenerateContent(ctx, nil)
		require.NoError(t, err)
		second, err := m.GenerateContent(ctx, nil)
		require.NoError(t, err)

		assert.Equal(t, "one", first.Choices[0].Content)
		assert.Equal(t, "two", second.Choices[0].Content)
		assert.Equal(t, 2, memo.Len())
	})

	t.Run("replay returns recorded responses without calling the provider", func(t *testing.T) {
		fake := &scriptedLLM{responses: []string{"one", "two"}}
		memo := step.NewMemo()
		ctx := step.WithExecutor(context.Background(), memo)

		live := newDurableModel(fake, nil)
		_, err := live.GenerateContent(ctx, nil)
		require.NoError(t, err)
		_, err = live.GenerateContent(ctx, nil)
		require.NoError(t, err)

		memo.Replay()
		replayed := newDurableModel(fake, nil)
		first, err := replayed.GenerateContent(ctx, nil)
		require.NoError(t, err)
		second, err := replayed.GenerateContent(ctx, nil)
		require.NoError(t, err)

		assert.Equal(t, "one", first.Choices[0].Content)
		assert.Equal(t, "two", second.Choices[0].Content)
		assert.Equal(t, 2, fake.calls, "provider must not be called on replay")
	})

	t.Run("fires callbacks with the replayed response", func(t *testing.T) {
		fake := &scriptedLLM{responses: []string{"hello"}}
		rec := stats.NewRecorder(StartingAgent)
		ctx := step.WithExecutor(context.Background(), step.NewMemo())

		m := newDurableModel(fake, rec)
		_, err := m.GenerateContent(ctx, nil)
		require.NoError(t, err)

		result := rec.Result()
		assert.Equal(t, stats.Usage{InputTokens: 100, OutputTokens: 20}, result.Usage)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "hello", result.Items[0].Content)
	})

	t.Run("implements single-prompt calls", func(t *testing.T) {
		fake := &scriptedLLM{responses: []string{"answer"}}
		m := newDurableModel(fake, nil)

		out, err := m.Call(context.Background(), "question")
		require.NoError(t, err)
		assert.Equal(t, "answer", out)
	})
}
