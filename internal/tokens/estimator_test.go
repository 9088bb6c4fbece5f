package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/peakform/ai-gateway/models"
)

func TestEstimateText_HeuristicFallback(t *testing.T) {
	// An estimator whose encoding never loaded counts chars/4.
	e := &Estimator{}
	e.once.Do(func() {})

	assert.Equal(t, 0, e.EstimateText(""))
	assert.Equal(t, 1, e.EstimateText("food"))
	assert.Equal(t, 25, e.EstimateText(strings.Repeat("a", 100)))
}

func TestEstimateMessages_IncludesFraming(t *testing.T) {
	e := &Estimator{}
	e.once.Do(func() {})

	messages := []models.Message{
		models.NewSystemMessage(strings.Repeat("s", 40)),
		models.NewUserMessage(strings.Repeat("u", 80)),
	}

	// 2*framing + role tokens (6/4 + 4/4) + content tokens (10 + 20).
	got := e.EstimateMessages(messages)
	assert.Equal(t, 2*tokensPerMessage+1+1+10+20, got)
}

func TestEstimateText_NeverNegative(t *testing.T) {
	e := NewEstimator()

	assert.GreaterOrEqual(t, e.EstimateText("hi"), 0)
	assert.Greater(t, e.EstimateText(strings.Repeat("token ", 50)), 0)
}
