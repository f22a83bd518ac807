package agentrun

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/tools"

	"github.com/fyrsmithlabs/agentstep/pkg/tool"
)

// salesRecord is one row of the demo dataset.
type salesRecord struct {
	Region string  `json:"region"`
	Units  int     `json:"units"`
	Total  float64 `json:"total"`
}

// demoSales stands in for a real data source. Values are stable so replayed
// runs stay consistent with recorded step results.
var demoSales = map[string][]salesRecord{
	"q1": {
		{Region: "north", Units: 120, Total: 54000},
		{Region: "south", Units: 95, Total: 41200},
		{Region: "west", Units: 143, Total: 61900},
	},
	"q2": {
		{Region: "north", Units: 132, Total: 58600},
		{Region: "south", Units: 101, Total: 44800},
		{Region: "west", Units: 150, Total: 66500},
	},
}

var fetchSalesSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"quarter": {"type": "string", "enum": ["q1", "q2"]}
	},
	"required": ["quarter"]
}`)

var analyzeSalesSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"records": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"region": {"type": "string"},
					"units": {"type": "integer"},
					"total": {"type": "number"}
				},
				"required": ["region", "units", "total"]
			}
		}
	},
	"required": ["records"]
}`)

// SalesTools builds the demo toolset, each wrapped so invocations persist as
// durable steps. Reports saved by save_report accumulate in reports.
func SalesTools(reports *ReportSink) ([]tools.Tool, error) {
	fetch, err := tool.NewFunc(
		"fetch_sales_data",
		"Fetches sales records for a quarter. Input: {\"quarter\": \"q1\"|\"q2\"}.",
		fetchSalesData,
		tool.WithSchema(fetchSalesSchema),
	)
	if err != nil {
		return nil, err
	}

	analyze, err := tool.NewFunc(
		"analyze_sales",
		"Computes totals and the best region from sales records. Input: {\"records\": [...]}.",
		analyzeSales,
		tool.WithSchema(analyzeSalesSchema),
	)
	if err != nil {
		return nil, err
	}

	save, err := tool.NewFunc(
		"save_report",
		"Saves a report summary. Input: {\"title\": \"...\", \"body\": \"...\"}.",
		reports.save,
	)
	if err != nil {
		return nil, err
	}

	return []tools.Tool{
		tool.AsStep(fetch),
		tool.AsStep(analyze),
		tool.AsStep(save),
	}, nil
}

func fetchSalesData(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Quarter string `json:"quarter"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("fetch_sales_data: decoding input: %w", err)
	}
	records, ok := demoSales[in.Quarter]
	if !ok {
		return nil, fmt.Errorf("fetch_sales_data: no data for quarter %q", in.Quarter)
	}
	return map[string]any{"quarter": in.Quarter, "records": records}, nil
}

func analyzeSales(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Records []salesRecord `json:"records"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("analyze_sales: decoding input: %w", err)
	}
	if len(in.Records) == 0 {
		return nil, fmt.Errorf("analyze_sales: no records to analyze")
	}

	var totalUnits int
	var totalRevenue float64
	best := in.Records[0]
	for _, rec := range in.Records {
		totalUnits += rec.Units
		totalRevenue += rec.Total
		if rec.Total > best.Total {
			best = rec
		}
	}
	return map[string]any{
		"total_units":   totalUnits,
		"total_revenue": totalRevenue,
		"best_region":   best.Region,
	}, nil
}

// ReportSink collects reports saved by the save_report tool.
type ReportSink struct {
	Reports []Report
}

// Report is one saved report.
type Report struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *ReportSink) save(ctx context.Context, args json.RawMessage) (any, error) {
	var report Report
	if err := json.Unmarshal(args, &report); err != nil {
		return nil, fmt.Errorf("save_report: decoding input: %w", err)
	}
	if report.Title == "" {
		return nil, fmt.Errorf("save_report: title is required")
	}
	s.Reports = append(s.Reports, report)
	return map[string]any{"saved": true, "title": report.Title}, nil
}
