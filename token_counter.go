package ctxcompact

import (
	"context"
	"fmt"
)

// TokenCounter measures the size of a message history in tokens.
//
// The engine treats the count as authoritative and never cross-checks
// it. Implementations may call a remote tokenizer and so take a context;
// failures are returned to the MaybeCompact caller unmodified.
//
// # Available Implementations
//
//   - tokenizers.NewEstimate: characters-per-token heuristic
//   - tokenizers.NewTiktoken: BPE count with tiktoken encodings
//   - tokenizers.NewAnthropic: Anthropic count_tokens API
type TokenCounter[M any] interface {
	// CountTokens returns the total token count of messages.
	// It must return 0 for an empty slice.
	CountTokens(ctx context.Context, messages []M) (int, error)
}

// PerMessageCounter is a TokenCounter that can also report the cost of
// each message. The windowing strategies need per-message costs to
// decide how many trailing messages fit a budget.
//
// A counter is additive when CountTokens(ms) equals the sum of
// CountPerMessage(ms). Counters that add framing per request or per
// boundary are not, and the windowing strategies document how they
// behave in that case.
type PerMessageCounter[M any] interface {
	TokenCounter[M]

	// CountPerMessage returns one count per message, in order.
	CountPerMessage(ctx context.Context, messages []M) ([]int, error)
}

// CounterFunc adapts a plain function to TokenCounter.
type CounterFunc[M any] func(ctx context.Context, messages []M) (int, error)

// CountTokens calls f.
func (f CounterFunc[M]) CountTokens(ctx context.Context, messages []M) (int, error) {
	return f(ctx, messages)
}

// PerMessageTokens returns the token cost of each message.
//
// If counter implements PerMessageCounter its CountPerMessage is used.
// Otherwise each message is measured on its own with CountTokens.
func PerMessageTokens[M any](
	ctx context.Context,
	counter TokenCounter[M],
	messages []M,
) ([]int, error) {
	if pm, ok := counter.(PerMessageCounter[M]); ok {
		counts, err := pm.CountPerMessage(ctx, messages)
		if err != nil {
			return nil, err
		}
		if len(counts) != len(messages) {
			return nil, fmt.Errorf(
				"%w: counter returned %d counts for %d messages",
				ErrTokenCountingFailed, len(counts), len(messages),
			)
		}
		return counts, nil
	}

	counts := make([]int, len(messages))
	for i := range messages {
		n, err := counter.CountTokens(ctx, messages[i:i+1])
		if err != nil {
			return nil, err
		}
		counts[i] = n
	}
	return counts, nil
}

// Compile-time check.
var _ TokenCounter[string] = CounterFunc[string](nil)
