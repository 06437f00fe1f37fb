package compaction

import (
	"context"
	"fmt"
	"slices"

	"github.com/rickchristie/ctxcompact"
)

// KeepRecentMessages keeps the last keepCount messages and
// discards everything older. It ignores the target budget
// and the token counter entirely.
//
// Example:
//
//	// Keep the last 20 messages
//	strategy, err := compaction.NewKeepRecent[Msg](20)
type KeepRecentMessages[M any] struct {
	keepCount int
}

// NewKeepRecent creates a KeepRecentMessages strategy.
// Returns an error wrapping ctxcompact.ErrInvalidConfig if
// keepCount < 1.
func NewKeepRecent[M any](
	keepCount int,
) (*KeepRecentMessages[M], error) {
	if keepCount < 1 {
		return nil, fmt.Errorf(
			"%w: keep_recent keep_count must be >= 1, got %d",
			ctxcompact.ErrInvalidConfig, keepCount,
		)
	}
	return &KeepRecentMessages[M]{keepCount: keepCount}, nil
}

// KeepCount returns the number of messages kept.
func (s *KeepRecentMessages[M]) KeepCount() int {
	return s.keepCount
}

// Compact implements ctxcompact.CompactionStrategy.
func (s *KeepRecentMessages[M]) Compact(
	_ context.Context,
	messages []M,
	_ int,
	_ ctxcompact.TokenCounter[M],
) ([]M, error) {
	if len(messages) <= s.keepCount {
		return messages, nil
	}
	return slices.Clone(messages[len(messages)-s.keepCount:]), nil
}

// Compile-time check.
var _ ctxcompact.CompactionStrategy[string] = (*KeepRecentMessages[string])(nil)
