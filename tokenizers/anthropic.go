package tokenizers

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/rickchristie/ctxcompact"
)

// Anthropic counts tokens with the Anthropic count_tokens
// API, which reports exactly what a Messages request with
// the same content would consume.
//
// Every CountTokens call is one HTTP request. Anthropic
// does not report per-message costs, so the windowing
// strategies fall back to one request per message; prefer
// SummarizeMiddle, KeepRecentMessages or
// DropOldestUntilFits with WithRecount for long histories.
//
// The client's own retry policy applies; the counter adds
// none.
//
// Example:
//
//	client := anthropic.NewClient(option.WithAPIKey(key))
//	counter := tokenizers.NewAnthropic(
//	    &client,
//	    anthropic.Model("claude-sonnet-4-5"),
//	    func(m anthropic.MessageParam) anthropic.MessageParam {
//	        return m
//	    },
//	)
type Anthropic[M any] struct {
	client  *anthropic.Client
	model   anthropic.Model
	convert func(M) anthropic.MessageParam
	system  string
}

// NewAnthropic creates an Anthropic counter.
func NewAnthropic[M any](
	client *anthropic.Client,
	model anthropic.Model,
	convert func(M) anthropic.MessageParam,
) *Anthropic[M] {
	return &Anthropic[M]{
		client:  client,
		model:   model,
		convert: convert,
	}
}

// WithSystem includes a system prompt in every count, so
// totals match the real request.
func (a *Anthropic[M]) WithSystem(system string) *Anthropic[M] {
	a.system = system
	return a
}

// CountTokens implements ctxcompact.TokenCounter.
// Transport and API errors wrap
// ctxcompact.ErrTokenCountingFailed.
func (a *Anthropic[M]) CountTokens(ctx context.Context, messages []M) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	params := anthropic.MessageCountTokensParams{
		Model:    a.model,
		Messages: make([]anthropic.MessageParam, len(messages)),
	}
	for i, m := range messages {
		params.Messages[i] = a.convert(m)
	}
	if a.system != "" {
		params.System = anthropic.MessageCountTokensParamsSystemUnion{
			OfString: anthropic.String(a.system),
		}
	}

	result, err := a.client.Messages.CountTokens(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ctxcompact.ErrTokenCountingFailed, err)
	}
	return int(result.InputTokens), nil
}

// Compile-time check.
var _ ctxcompact.TokenCounter[string] = (*Anthropic[string])(nil)
