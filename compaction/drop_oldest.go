package compaction

import (
	"context"
	"slices"

	"github.com/rickchristie/ctxcompact"
)

// DropOldestUntilFits removes the oldest message while the
// history exceeds the target budget. The newest message is
// never removed.
//
// # Totals
//
// By default the starting total is measured once with
// CountTokens and each removal subtracts that message's
// per-message cost. WithRecount instead re-measures the
// remaining history with CountTokens after every removal,
// which costs one count per removal but is exact for any
// counter.
//
// # Relation to SlidingWindow
//
// With an additive counter (CountTokens equals the sum of
// per-message costs) both modes return the same suffix as
// SlidingWindow for the same input and budget. With a
// counter that adds framing tokens the results may differ:
// DropOldestUntilFits keeps the framing in its total and
// so may drop more messages than SlidingWindow, which
// ignores it.
//
// Example:
//
//	strategy := compaction.NewDropOldest[Msg]().WithRecount()
type DropOldestUntilFits[M any] struct {
	recount bool
}

// NewDropOldest creates a DropOldestUntilFits strategy in
// incremental mode.
func NewDropOldest[M any]() *DropOldestUntilFits[M] {
	return &DropOldestUntilFits[M]{}
}

// WithRecount re-measures the remaining history after
// each removal.
func (s *DropOldestUntilFits[M]) WithRecount() *DropOldestUntilFits[M] {
	s.recount = true
	return s
}

// Compact implements ctxcompact.CompactionStrategy.
func (s *DropOldestUntilFits[M]) Compact(
	ctx context.Context,
	messages []M,
	targetTokens int,
	counter ctxcompact.TokenCounter[M],
) ([]M, error) {
	if len(messages) == 0 {
		return messages, nil
	}

	var (
		start int
		err   error
	)
	if s.recount {
		start, err = s.dropRecounting(ctx, messages, targetTokens, counter)
	} else {
		start, err = s.dropIncremental(ctx, messages, targetTokens, counter)
	}
	if err != nil {
		return nil, err
	}

	if start == 0 {
		return messages, nil
	}
	return slices.Clone(messages[start:]), nil
}

// dropIncremental returns the index of the first kept
// message, decrementing a single measured total.
func (s *DropOldestUntilFits[M]) dropIncremental(
	ctx context.Context,
	messages []M,
	targetTokens int,
	counter ctxcompact.TokenCounter[M],
) (int, error) {
	total, err := counter.CountTokens(ctx, messages)
	if err != nil {
		return 0, err
	}
	if total <= targetTokens {
		return 0, nil
	}

	costs, err := ctxcompact.PerMessageTokens(ctx, counter, messages)
	if err != nil {
		return 0, err
	}

	start := 0
	for total > targetTokens && start < len(messages)-1 {
		total -= costs[start]
		start++
	}
	return start, nil
}

// dropRecounting returns the index of the first kept
// message, measuring the remainder after each removal.
func (s *DropOldestUntilFits[M]) dropRecounting(
	ctx context.Context,
	messages []M,
	targetTokens int,
	counter ctxcompact.TokenCounter[M],
) (int, error) {
	start := 0
	for start < len(messages)-1 {
		total, err := counter.CountTokens(ctx, messages[start:])
		if err != nil {
			return 0, err
		}
		if total <= targetTokens {
			break
		}
		start++
	}
	return start, nil
}

// Compile-time check.
var _ ctxcompact.CompactionStrategy[string] = (*DropOldestUntilFits[string])(nil)
