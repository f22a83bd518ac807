package agentrun

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/agentstep/pkg/step"
)

func TestSalesTools(t *testing.T) {
	toolset, err := SalesTools(&ReportSink{})
	require.NoError(t, err)
	require.Len(t, toolset, 3)

	names := make([]string, 0, len(toolset))
	for _, tl := range toolset {
		names = append(names, tl.Name())
	}
	assert.Equal(t, []string{"fetch_sales_data", "analyze_sales", "save_report"}, names)
}

func TestFetchSalesData(t *testing.T) {
	toolset, err := SalesTools(&ReportSink{})
	require.NoError(t, err)
	fetch := toolset[0]

	t.Run("known quarter", func(t *testing.T) {
		out, err := fetch.Call(context.Background(), `{"quarter": "q1"}`)
		require.NoError(t, err)

		var decoded struct {
			Quarter string        `json:"quarter"`
			Records []salesRecord `json:"records"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "q1", decoded.Quarter)
		assert.Len(t, decoded.Records, 3)
	})

	t.Run("quarter outside schema rejected without retry", func(t *testing.T) {
		_, err := fetch.Call(context.Background(), `{"quarter": "q9"}`)
		require.Error(t, err)
		assert.True(t, step.IsNonRetryable(err))
	})

	t.Run("memoized across replays under step executor", func(t *testing.T) {
		memo := step.NewMemo()
		ctx := step.WithExecutor(context.Background(), memo)

		first, err := fetch.Call(ctx, `{"quarter": "q2"}`)
		require.NoError(t, err)

		memo.Replay()
		second, err := fetch.Call(ctx, `{"quarter": "q2"}`)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, memo.Len())
	})

	t.Run("consecutive calls for different quarters return their own data", func(t *testing.T) {
		ctx := step.WithExecutor(context.Background(), step.NewMemo())

		q1, err := fetch.Call(ctx, `{"quarter": "q1"}`)
		require.NoError(t, err)
		q2, err := fetch.Call(ctx, `{"quarter": "q2"}`)
		require.NoError(t, err)

		assert.Contains(t, q1, `"quarter":"q1"`)
		assert.Contains(t, q2, `"quarter":"q2"`)
		assert.NotEqual(t, q1, q2)
	})
}

func TestAnalyzeSales(t *testing.T) {
	toolset, err := SalesTools(&ReportSink{})
	require.NoError(t, err)
	analyze := toolset[1]

	input := `{"records": [
		{"region": "north", "units": 10, "total": 1000},
		{"region": "west", "units": 5, "total": 2500}
	]}`
	out, err := analyze.Call(context.Background(), input)
	require.NoError(t, err)

	var decoded struct {
		TotalUnits   int     `json:"total_units"`
		TotalRevenue float64 `json:"total_revenue"`
		BestRegion   string  `json:"best_region"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 15, decoded.TotalUnits)
	assert.Equal(t, 3500.0, decoded.TotalRevenue)
	assert.Equal(t, "west", decoded.BestRegion)
}

func TestSaveReport(t *testing.T) {
	sink := &ReportSink{}
	toolset, err := SalesTools(sink)
	require.NoError(t, err)
	save := toolset[2]

	t.Run("saves report", func(t *testing.T) {
		_, err := save.Call(context.Background(), `{"title": "Q1 Summary", "body": "West leads."}`)
		require.NoError(t, err)
		require.Len(t, sink.Reports, 1)
		assert.Equal(t, "Q1 Summary", sink.Reports[0].Title)
	})

	t.Run("requires title", func(t *testing.T) {
		_, err := save.Call(context.Background(), `{"body": "no title"}`)
		assert.Error(t, err)
	})
}
