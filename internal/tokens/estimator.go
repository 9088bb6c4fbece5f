// Package tokens estimates token counts for transcripts whose provider
// did not report usage.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/peakform/ai-gateway/models"
)

const encodingName = "cl100k_base"

// tokensPerMessage covers the per-turn framing overhead most chat formats
// carry around the content itself.
const tokensPerMessage = 4

// Estimator counts tokens with tiktoken when the encoding is available
// and falls back to the chars/4 heuristic otherwise.
type Estimator struct {
	once     sync.Once
	encoding *tiktoken.Tiktoken
}

// NewEstimator creates an estimator. The encoding loads lazily on first
// use so construction never blocks on the BPE files.
func NewEstimator() *Estimator {
	return &Estimator{}
}

func (e *Estimator) getEncoding() *tiktoken.Tiktoken {
	e.once.Do(func() {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			return
		}
		e.encoding = enc
	})
	return e.encoding
}

// EstimateText returns the approximate token count of a single string
func (e *Estimator) EstimateText(text string) int {
	if enc := e.getEncoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return len(text) / 4
}

// EstimateMessages returns the approximate prompt size of a transcript,
// including per-message framing overhead.
func (e *Estimator) EstimateMessages(messages []models.Message) int {
	total := 0
	for _, msg := range messages {
		total += tokensPerMessage
		total += e.EstimateText(string(msg.Role))
		total += e.EstimateText(msg.Content)
	}
	return total
}
