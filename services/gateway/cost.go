package gateway

import "strings"

// modelRate holds per-1K-token prices in cents
type modelRate struct {
	inputCentsPer1K  float64
	outputCentsPer1K float64
}

// modelRates is the static rate table used for cost attribution. Prices
// change rarely enough that updates ship as code changes.
var modelRates = map[string]modelRate{
	// Anthropic ($ per MTok: opus 15/75, sonnet 3/15, haiku 0.8/4)
	"claude-opus-4-5-20251101": {1.5, 7.5},
	"claude-sonnet-4-20250514": {0.3, 1.5},
	"claude-haiku-4-20250514":  {0.08, 0.4},
	"claude-3-5-haiku-20241022": {0.08, 0.4},

	// OpenAI ($ per MTok: gpt-4o 2.5/10, mini 0.15/0.6)
	"gpt-4o":      {0.25, 1.0},
	"gpt-4o-mini": {0.015, 0.06},

	// Gemini ($ per MTok: flash 0.10/0.40)
	"gemini-2.0-flash": {0.01, 0.04},
	"gemini-3-flash":   {0.01, 0.04},
}

// defaultRate overestimates on purpose: a model missing from the table
// should inflate the bill, not hide spend.
var defaultRate = modelRate{0.5, 1.5}

// estimateCostCents prices a completion from the static rate table
func estimateCostCents(model string, inputTokens, outputTokens int) float64 {
	rate := rateFor(model)
	return float64(inputTokens)/1000*rate.inputCentsPer1K +
		float64(outputTokens)/1000*rate.outputCentsPer1K
}

// rateFor resolves a model to its rate: exact match first, then the
// longest matching prefix to absorb dated model suffixes.
func rateFor(model string) modelRate {
	if rate, ok := modelRates[model]; ok {
		return rate
	}

	bestLen := 0
	best := defaultRate
	for prefix, rate := range modelRates {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			bestLen = len(prefix)
			best = rate
		}
	}
	return best
}
