package compaction

import (
	"context"
	"fmt"

	"github.com/rickchristie/ctxcompact"
)

// SummarizeMiddle keeps the first keepFirst and last
// keepLast messages and replaces everything between them
// with one summary message produced by a Summarizer:
//
//	Before: [m0, m1, m2, m3, m4]       (keepFirst=1, keepLast=1)
//	After:  [m0, summary(m1..m3), m4]
//
// Head and tail are handled as in KeepFirstLast. When the
// middle is empty the input is returned unchanged;
// otherwise the summarizer is called, even for a single
// middle message.
//
// The summary is counted like any other message. By
// default the spliced result is not checked against the
// target budget. WithRecompact sets a second strategy
// that is applied when the spliced result still exceeds
// the budget.
//
// Summarizer errors are returned unmodified. There is no
// fallback to plain truncation.
//
// Example:
//
//	strategy, err := compaction.NewSummarizeMiddle[Msg](
//	    2, 6, summarizer,
//	)
//	if err != nil {
//	    return err
//	}
//	strategy.WithRecompact(compaction.NewSlidingWindow[Msg]())
type SummarizeMiddle[M any] struct {
	keepFirst  int
	keepLast   int
	summarizer ctxcompact.Summarizer[M]
	recompact  ctxcompact.CompactionStrategy[M]
}

// NewSummarizeMiddle creates a SummarizeMiddle strategy.
// Returns an error wrapping ctxcompact.ErrInvalidConfig if
// either count is negative or summarizer is nil.
func NewSummarizeMiddle[M any](
	keepFirst, keepLast int,
	summarizer ctxcompact.Summarizer[M],
) (*SummarizeMiddle[M], error) {
	if err := validateHeadTail(
		"summarize_middle", keepFirst, keepLast,
	); err != nil {
		return nil, err
	}
	if summarizer == nil {
		return nil, fmt.Errorf(
			"%w: summarize_middle requires a summarizer",
			ctxcompact.ErrInvalidConfig,
		)
	}
	return &SummarizeMiddle[M]{
		keepFirst:  keepFirst,
		keepLast:   keepLast,
		summarizer: summarizer,
	}, nil
}

// WithRecompact sets the strategy applied to the spliced
// result when it still exceeds the target budget. nil
// disables the check.
func (s *SummarizeMiddle[M]) WithRecompact(
	next ctxcompact.CompactionStrategy[M],
) *SummarizeMiddle[M] {
	s.recompact = next
	return s
}

// Compact implements ctxcompact.CompactionStrategy.
func (s *SummarizeMiddle[M]) Compact(
	ctx context.Context,
	messages []M,
	targetTokens int,
	counter ctxcompact.TokenCounter[M],
) ([]M, error) {
	head, middle, tail, covered := split(
		messages, s.keepFirst, s.keepLast,
	)
	if covered || len(middle) == 0 {
		return messages, nil
	}

	summary, err := s.summarizer.Summarize(ctx, middle)
	if err != nil {
		return nil, err
	}

	result := make([]M, 0, len(head)+1+len(tail))
	result = append(result, head...)
	result = append(result, summary)
	result = append(result, tail...)

	if s.recompact == nil {
		return result, nil
	}

	total, err := counter.CountTokens(ctx, result)
	if err != nil {
		return nil, err
	}
	if total <= targetTokens {
		return result, nil
	}
	return s.recompact.Compact(ctx, result, targetTokens, counter)
}

// Compile-time check.
var _ ctxcompact.CompactionStrategy[string] = (*SummarizeMiddle[string])(nil)
