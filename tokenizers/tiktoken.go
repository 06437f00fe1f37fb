package tokenizers

import (
	"context"
	"fmt"

	"github.com/rickchristie/ctxcompact"
	"github.com/tiktoken-go/tokenizer"
)

// Chat framing costs for OpenAI-style chat models.
const (
	// TiktokenMessageOverhead is added to every message for
	// its role and delimiters.
	TiktokenMessageOverhead = 3

	// TiktokenReplyPriming is added once per request for the
	// tokens that prime the assistant's reply.
	TiktokenReplyPriming = 3
)

// Tiktoken counts tokens locally with a tiktoken BPE
// encoding. Encodings are embedded in the tokenizer module,
// so counting needs no network access.
//
// Tiktoken is not additive: CountTokens adds
// TiktokenReplyPriming once on top of the per-message
// counts. See ctxcompact.PerMessageCounter.
//
// Example:
//
//	counter, err := tokenizers.NewTiktoken(
//	    tokenizer.O200kBase,
//	    summarizers.MessageText,
//	)
type Tiktoken[M any] struct {
	codec  tokenizer.Codec
	render func(M) string
}

// NewTiktoken creates a Tiktoken counter for encoding.
// Returns an error wrapping ctxcompact.ErrInvalidConfig if
// the encoding is unknown.
func NewTiktoken[M any](
	encoding tokenizer.Encoding,
	render func(M) string,
) (*Tiktoken[M], error) {
	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: tiktoken encoding %q: %v",
			ctxcompact.ErrInvalidConfig, encoding, err)
	}
	return &Tiktoken[M]{codec: codec, render: render}, nil
}

// CountTokens implements ctxcompact.TokenCounter.
func (t *Tiktoken[M]) CountTokens(ctx context.Context, messages []M) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}
	counts, err := t.CountPerMessage(ctx, messages)
	if err != nil {
		return 0, err
	}
	total := TiktokenReplyPriming
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// CountPerMessage implements ctxcompact.PerMessageCounter.
func (t *Tiktoken[M]) CountPerMessage(_ context.Context, messages []M) ([]int, error) {
	counts := make([]int, len(messages))
	for i, m := range messages {
		n, err := t.codec.Count(t.render(m))
		if err != nil {
			return nil, fmt.Errorf("%w: message %d: %v",
				ctxcompact.ErrTokenCountingFailed, i, err)
		}
		counts[i] = n + TiktokenMessageOverhead
	}
	return counts, nil
}

// Compile-time check.
var _ ctxcompact.PerMessageCounter[string] = (*Tiktoken[string])(nil)
