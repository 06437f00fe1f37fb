// Package tokenizers provides ctxcompact.TokenCounter
// implementations.
//
//   - [Estimate]: characters-per-token heuristic, no I/O
//   - [Tiktoken]: local BPE count with a tiktoken encoding
//   - [Anthropic]: the Anthropic count_tokens API
//
// Every counter is generic over the message type and takes
// a function that turns one message into what it measures
// (its text, or an Anthropic message param).
package tokenizers

import (
	"context"
	"math"
	"unicode/utf8"

	"github.com/rickchristie/ctxcompact"
)

// Default heuristics for Estimate.
const (
	DefaultCharsPerToken   = 4.0
	DefaultMessageOverhead = 4
)

// Estimate approximates token counts from character counts:
// each message costs its rune count divided by CharsPerToken,
// rounded up, plus a fixed overhead for role and framing.
//
// Estimate is additive: CountTokens is exactly the sum of
// CountPerMessage, so the windowing strategies fit it
// precisely.
//
// Example:
//
//	counter := tokenizers.NewEstimate(func(m Msg) string {
//	    return m.Text
//	})
type Estimate[M any] struct {
	render          func(M) string
	charsPerToken   float64
	messageOverhead int
}

// NewEstimate creates an Estimate counter with the default
// ratio of 4 characters per token and 4 tokens of overhead
// per message.
func NewEstimate[M any](render func(M) string) *Estimate[M] {
	return &Estimate[M]{
		render:          render,
		charsPerToken:   DefaultCharsPerToken,
		messageOverhead: DefaultMessageOverhead,
	}
}

// WithCharsPerToken sets the characters-per-token ratio.
// Values <= 0 restore the default.
func (e *Estimate[M]) WithCharsPerToken(ratio float64) *Estimate[M] {
	if ratio <= 0 {
		ratio = DefaultCharsPerToken
	}
	e.charsPerToken = ratio
	return e
}

// WithMessageOverhead sets the fixed per-message cost.
// Negative values are treated as 0.
func (e *Estimate[M]) WithMessageOverhead(tokens int) *Estimate[M] {
	e.messageOverhead = max(tokens, 0)
	return e
}

// CountTokens implements ctxcompact.TokenCounter.
func (e *Estimate[M]) CountTokens(_ context.Context, messages []M) (int, error) {
	total := 0
	for _, m := range messages {
		total += e.count(m)
	}
	return total, nil
}

// CountPerMessage implements ctxcompact.PerMessageCounter.
func (e *Estimate[M]) CountPerMessage(_ context.Context, messages []M) ([]int, error) {
	counts := make([]int, len(messages))
	for i, m := range messages {
		counts[i] = e.count(m)
	}
	return counts, nil
}

func (e *Estimate[M]) count(m M) int {
	text := e.render(m)
	return e.messageOverhead + int(math.Ceil(float64(utf8.RuneCountInString(text))/e.charsPerToken))
}

// Compile-time check.
var _ ctxcompact.PerMessageCounter[string] = (*Estimate[string])(nil)
