package ctxcompact

import "context"

// CompactionStrategy decides HOW to shrink a message history.
//
// The compactor calls Compact once the trigger threshold has been
// reached, passing the current history, the token budget the result
// should fit in, and the counter used to measure it.
//
// # Contract
//
//   - messages must not be modified. Strategies that keep a subset
//     return a new slice; strategies that keep everything may return
//     messages itself.
//   - The relative order of retained messages is preserved.
//   - Compact may block (e.g. on an LLM call) and may fail. Errors are
//     returned to the MaybeCompact caller unmodified; the compactor does
//     not retry or fall back.
//
// # Available Implementations
//
//   - compaction.NewKeepRecent: keeps the last N messages
//   - compaction.NewKeepFirstLast: keeps the first N and last M
//   - compaction.NewSlidingWindow: longest recent suffix that fits
//   - compaction.NewDropOldest: drops from the front until it fits
//   - compaction.NewSummarizeMiddle: keeps head and tail, summarizes
//     the middle into one message
//
// # Implementing Custom Strategies
//
//	type DropToolOutputs struct{}
//
//	func (s *DropToolOutputs) Compact(
//	    ctx context.Context,
//	    messages []Msg,
//	    targetTokens int,
//	    counter ctxcompact.TokenCounter[Msg],
//	) ([]Msg, error) {
//	    result := make([]Msg, 0, len(messages))
//	    for _, m := range messages {
//	        if !m.IsToolOutput() {
//	            result = append(result, m)
//	        }
//	    }
//	    return result, nil
//	}
type CompactionStrategy[M any] interface {
	// Compact returns a history that should fit in targetTokens
	// as measured by counter.
	Compact(
		ctx context.Context,
		messages []M,
		targetTokens int,
		counter TokenCounter[M],
	) ([]M, error)
}

// StrategyFunc adapts a plain function to CompactionStrategy.
type StrategyFunc[M any] func(
	ctx context.Context,
	messages []M,
	targetTokens int,
	counter TokenCounter[M],
) ([]M, error)

// Compact calls f.
func (f StrategyFunc[M]) Compact(
	ctx context.Context,
	messages []M,
	targetTokens int,
	counter TokenCounter[M],
) ([]M, error) {
	return f(ctx, messages, targetTokens, counter)
}

// Summarizer condenses a run of messages into a single substitute
// message. It is consumed by the summarize-middle strategy and is
// supplied by the caller, usually backed by an LLM call.
//
// The returned message is counted by the TokenCounter like any other.
type Summarizer[M any] interface {
	Summarize(ctx context.Context, messages []M) (M, error)
}

// SummarizerFunc adapts a plain function to Summarizer.
type SummarizerFunc[M any] func(ctx context.Context, messages []M) (M, error)

// Summarize calls f.
func (f SummarizerFunc[M]) Summarize(ctx context.Context, messages []M) (M, error) {
	return f(ctx, messages)
}

// HistoryProcessor is the shape host SDK history hooks expect: take the
// history about to be sent, return the history to send instead.
type HistoryProcessor[M any] func(ctx context.Context, messages []M) ([]M, error)

// Compile-time checks.
var (
	_ CompactionStrategy[string] = StrategyFunc[string](nil)
	_ Summarizer[string]         = SummarizerFunc[string](nil)
)
