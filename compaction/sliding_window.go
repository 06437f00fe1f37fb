package compaction

import (
	"context"
	"slices"

	"github.com/rickchristie/ctxcompact"
)

// SlidingWindow keeps the longest run of most recent
// messages whose summed per-message cost fits the target
// budget.
//
// It walks backward from the newest message and stops at
// the first message that would overflow the budget. The
// result is always a contiguous suffix, never a sparse
// best fit. If the newest message alone exceeds the budget
// it is still returned on its own, so the turn in progress
// is never discarded.
//
// Costs come from ctxcompact.PerMessageTokens. With a
// non-additive counter (one that adds framing tokens per
// request) the sum of per-message costs understates the
// real total by that framing, and the result may measure
// slightly above the target. Use DropOldestUntilFits with
// WithRecount when the framing matters.
//
// Example:
//
//	strategy := compaction.NewSlidingWindow[Msg]()
type SlidingWindow[M any] struct{}

// NewSlidingWindow creates a SlidingWindow strategy.
func NewSlidingWindow[M any]() *SlidingWindow[M] {
	return &SlidingWindow[M]{}
}

// Compact implements ctxcompact.CompactionStrategy.
func (s *SlidingWindow[M]) Compact(
	ctx context.Context,
	messages []M,
	targetTokens int,
	counter ctxcompact.TokenCounter[M],
) ([]M, error) {
	if len(messages) == 0 {
		return messages, nil
	}

	costs, err := ctxcompact.PerMessageTokens(ctx, counter, messages)
	if err != nil {
		return nil, err
	}

	// The newest message is always kept.
	start := len(messages) - 1
	total := costs[start]
	for i := start - 1; i >= 0; i-- {
		if total+costs[i] > targetTokens {
			break
		}
		total += costs[i]
		start = i
	}

	if start == 0 {
		return messages, nil
	}
	return slices.Clone(messages[start:]), nil
}

// Compile-time check.
var _ ctxcompact.CompactionStrategy[string] = (*SlidingWindow[string])(nil)
