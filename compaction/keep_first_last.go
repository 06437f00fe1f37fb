package compaction

import (
	"context"
	"fmt"

	"github.com/rickchristie/ctxcompact"
)

// KeepFirstLast keeps the first keepFirst and the last
// keepLast messages, dropping everything between them.
// Typical use is pinning the system prompt and the task
// statement while keeping the latest turns.
//
// When the two windows overlap or together cover the whole
// history, the input is returned unchanged; a message is
// never duplicated.
//
// Like KeepRecentMessages it ignores the target budget.
//
// Example:
//
//	// [0,1] + [n-3, n-2, n-1]
//	strategy, err := compaction.NewKeepFirstLast[Msg](2, 3)
type KeepFirstLast[M any] struct {
	keepFirst int
	keepLast  int
}

// NewKeepFirstLast creates a KeepFirstLast strategy.
// Returns an error wrapping ctxcompact.ErrInvalidConfig if
// either count is negative.
func NewKeepFirstLast[M any](
	keepFirst, keepLast int,
) (*KeepFirstLast[M], error) {
	if err := validateHeadTail(
		"keep_first_last", keepFirst, keepLast,
	); err != nil {
		return nil, err
	}
	return &KeepFirstLast[M]{
		keepFirst: keepFirst,
		keepLast:  keepLast,
	}, nil
}

// Compact implements ctxcompact.CompactionStrategy.
func (s *KeepFirstLast[M]) Compact(
	_ context.Context,
	messages []M,
	_ int,
	_ ctxcompact.TokenCounter[M],
) ([]M, error) {
	head, _, tail, covered := split(
		messages, s.keepFirst, s.keepLast,
	)
	if covered {
		return messages, nil
	}
	result := make([]M, 0, len(head)+len(tail))
	result = append(result, head...)
	result = append(result, tail...)
	return result, nil
}

// split partitions messages into head, middle and tail.
// covered is true when head and tail together reach every
// message, in which case only messages is meaningful.
func split[M any](
	messages []M,
	keepFirst, keepLast int,
) (head, middle, tail []M, covered bool) {
	n := len(messages)
	if keepFirst+keepLast >= n {
		return nil, nil, nil, true
	}
	return messages[:keepFirst],
		messages[keepFirst : n-keepLast],
		messages[n-keepLast:],
		false
}

func validateHeadTail(name string, keepFirst, keepLast int) error {
	if keepFirst < 0 || keepLast < 0 {
		return fmt.Errorf(
			"%w: %s keep_first and keep_last must be >= 0, got %d and %d",
			ctxcompact.ErrInvalidConfig, name, keepFirst, keepLast,
		)
	}
	return nil
}

// Compile-time check.
var _ ctxcompact.CompactionStrategy[string] = (*KeepFirstLast[string])(nil)
