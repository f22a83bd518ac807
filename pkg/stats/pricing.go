package stats

// Pricing holds per-token USD prices for one model.
type Pricing struct {
	InputPerToken  float64 `json:"input_per_token"`
	OutputPerToken float64 `json:"output_per_token"`
}

// Cost returns the USD cost of usage at these prices.
func (p Pricing) Cost(u Usage) float64 {
	return float64(u.InputTokens)*p.InputPerToken + float64(u.OutputTokens)*p.OutputPerToken
}

// Table maps model names to per-token pricing. Prices are supplied by the
// caller; DefaultTable is a convenience starting point.
type Table map[string]Pricing

// Cost returns the USD cost for usage on model, or nil when the table is nil
// or does not know the model. Unknown models are never an error.
func (t Table) Cost(model string, u Usage) *float64 {
	if t == nil {
		return nil
	}
	pricing, ok := t[model]
	if !ok {
		return nil
	}
	cost := pricing.Cost(u)
	return &cost
}

// perMillion converts a price per million tokens to a per-token price.
func perMillion(usd float64) float64 {
	return usd / 1_000_000
}

// DefaultTable returns built-in pricing for a handful of common models.
// Prices drift; override with your own Table for billing-grade numbers.
func DefaultTable() Table {
	return Table{
		"gpt-4o":      {InputPerToken: perMillion(2.50), OutputPerToken: perMillion(10.00)},
		"gpt-4o-mini": {InputPerToken: perMillion(0.15), OutputPerToken: perMillion(0.60)},
		"gpt-4.1":     {InputPerToken: perMillion(2.00), OutputPerToken: perMillion(8.00)},
		"gpt-4.1-mini": {
			InputPerToken:  perMillion(0.40),
			OutputPerToken: perMillion(1.60),
		},
	}
}
