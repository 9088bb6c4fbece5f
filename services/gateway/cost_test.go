package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCostCents(t *testing.T) {
	tests := []struct {
		name         string
		model        string
		inputTokens  int
		outputTokens int
		want         float64
	}{
		{
			name:         "known anthropic model",
			model:        "claude-sonnet-4-20250514",
			inputTokens:  1000,
			outputTokens: 1000,
			want:         1.8,
		},
		{
			name:         "known openai model",
			model:        "gpt-4o",
			inputTokens:  2000,
			outputTokens: 500,
			want:         2*0.25 + 0.5*1.0,
		},
		{
			name:         "fractional token counts",
			model:        "gpt-4o-mini",
			inputTokens:  150,
			outputTokens: 80,
			want:         0.15*0.015 + 0.08*0.06,
		},
		{
			name:         "zero tokens cost nothing",
			model:        "claude-sonnet-4-20250514",
			inputTokens:  0,
			outputTokens: 0,
			want:         0,
		},
		{
			name:         "unknown model billed at the inflated default",
			model:        "mystery-model-9000",
			inputTokens:  1000,
			outputTokens: 1000,
			want:         2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateCostCents(tt.model, tt.inputTokens, tt.outputTokens)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRateFor_PrefixMatching(t *testing.T) {
	t.Run("dated suffix resolves to the base model", func(t *testing.T) {
		assert.Equal(t, rateFor("gpt-4o"), rateFor("gpt-4o-2024-08-06"))
	})

	t.Run("longest prefix wins", func(t *testing.T) {
		// gpt-4o-mini variants must price as mini, not as gpt-4o.
		assert.Equal(t, rateFor("gpt-4o-mini"), rateFor("gpt-4o-mini-2024-07-18"))
		assert.NotEqual(t, rateFor("gpt-4o"), rateFor("gpt-4o-mini-2024-07-18"))
	})

	t.Run("unknown model falls back to the default rate", func(t *testing.T) {
		assert.Equal(t, defaultRate, rateFor("mystery-model-9000"))
	})
}
