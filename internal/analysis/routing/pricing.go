package routing

import "sort"

// ModelPrice holds per-1K-token pricing and a coarse quality tier for one
// candidate model. Higher tier means a stronger model.
type ModelPrice struct {
	InPerKTok  float64
	OutPerKTok float64
	Tier       int
}

// Cost estimates the USD cost of a call with the given token counts.
func (p ModelPrice) Cost(tokensIn, tokensOut int) float64 {
	return float64(tokensIn)/1000*p.InPerKTok + float64(tokensOut)/1000*p.OutPerKTok
}

// PriceTable maps model names to pricing.
type PriceTable map[string]ModelPrice

// DefaultPriceTable is the embedded candidate-model pricing, USD per 1K
// tokens. Last updated: 2026-07-01.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		// Anthropic
		"claude-3-5-haiku":   {0.0008, 0.004, 1},
		"claude-haiku-4-5":   {0.001, 0.005, 1},
		"claude-sonnet-4-5":  {0.003, 0.015, 2},
		"claude-opus-4-5":    {0.005, 0.025, 3},

		// OpenAI
		"gpt-4o-mini": {0.00015, 0.0006, 1},
		"gpt-4o":      {0.0025, 0.01, 2},
		"gpt-5-mini":  {0.00025, 0.002, 1},
		"gpt-5":       {0.00125, 0.01, 2},
		"gpt-5-pro":   {0.015, 0.12, 3},

		// Google
		"gemini-2.5-flash": {0.0003, 0.0025, 1},
		"gemini-2.5-pro":   {0.00125, 0.01, 2},
	}
}

// Lookup returns the pricing for a model, or ok=false when unknown.
func (t PriceTable) Lookup(model string) (ModelPrice, bool) {
	p, ok := t[model]
	return p, ok
}

// Alternative is one row of the alternative-model comparison table.
type Alternative struct {
	Model         string
	Tier          int
	EstimatedCost float64
	SavingsPct    float64
}

// Alternatives builds the comparison table for a call: every priced model
// except the current one, with estimated cost and savings against the call's
// actual cost, sorted descending by savings. Ties break toward the higher
// quality tier. A non-positive current cost yields savings of 0 for every
// row rather than dividing by zero.
func Alternatives(currentModel string, tokensIn, tokensOut int, currentCost float64, table PriceTable) []Alternative {
	alts := make([]Alternative, 0, len(table))
	for model, price := range table {
		if model == currentModel {
			continue
		}
		est := price.Cost(tokensIn, tokensOut)
		savings := 0.0
		if currentCost > 0 {
			savings = (currentCost - est) / currentCost * 100
		}
		alts = append(alts, Alternative{
			Model:         model,
			Tier:          price.Tier,
			EstimatedCost: est,
			SavingsPct:    savings,
		})
	}

	sort.SliceStable(alts, func(i, j int) bool {
		if alts[i].SavingsPct != alts[j].SavingsPct {
			return alts[i].SavingsPct > alts[j].SavingsPct
		}
		if alts[i].Tier != alts[j].Tier {
			return alts[i].Tier > alts[j].Tier
		}
		return alts[i].Model < alts[j].Model
	})
	return alts
}
