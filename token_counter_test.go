package ctxcompact_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rickchristie/ctxcompact"
	"github.com/rickchristie/ctxcompact/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortCounter reports one count too few.
type shortCounter struct {
	*tt.MockCounter
}

func (c shortCounter) CountPerMessage(
	ctx context.Context,
	messages []tt.Msg,
) ([]int, error) {
	counts, err := c.MockCounter.CountPerMessage(ctx, messages)
	if err != nil || len(counts) == 0 {
		return counts, err
	}
	return counts[1:], nil
}

func TestPerMessageTokens(t *testing.T) {
	failure := errors.New("tokenizer down")

	type input struct {
		counter  ctxcompact.TokenCounter[tt.Msg]
		messages []tt.Msg
	}

	type expected struct {
		counts  []int
		err     error
		wrapped error
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "per message counter",
			input: input{
				counter:  tt.NewMockCounter().WithFraming(7),
				messages: tt.Msgs(3, 1, 4),
			},
			expected: expected{counts: []int{3, 1, 4}},
		},
		{
			name: "total only counter measures each message",
			input: input{
				counter:  tt.TotalOnly{Counter: tt.NewMockCounter().WithFraming(2)},
				messages: tt.Msgs(3, 1, 4),
			},
			expected: expected{counts: []int{5, 3, 6}},
		},
		{
			name: "counter func",
			input: input{
				counter: ctxcompact.CounterFunc[tt.Msg](
					func(_ context.Context, ms []tt.Msg) (int, error) {
						return len(ms) * 10, nil
					},
				),
				messages: tt.Msgs(0, 0),
			},
			expected: expected{counts: []int{10, 10}},
		},
		{
			name: "empty history",
			input: input{
				counter:  tt.TotalOnly{Counter: tt.NewMockCounter()},
				messages: nil,
			},
			expected: expected{counts: []int{}},
		},
		{
			name: "per message error propagates",
			input: input{
				counter:  tt.NewMockCounter().FailPerMessage(failure),
				messages: tt.Msgs(1, 2),
			},
			expected: expected{err: failure},
		},
		{
			name: "fallback error propagates",
			input: input{
				counter:  tt.TotalOnly{Counter: tt.NewMockCounter().FailOnCall(2, failure)},
				messages: tt.Msgs(1, 2),
			},
			expected: expected{err: failure},
		},
		{
			name: "count mismatch is a counting failure",
			input: input{
				counter:  shortCounter{tt.NewMockCounter()},
				messages: tt.Msgs(1, 2),
			},
			expected: expected{wrapped: ctxcompact.ErrTokenCountingFailed},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			counts, err := ctxcompact.PerMessageTokens(
				context.Background(), test.input.counter, test.input.messages,
			)

			switch {
			case test.expected.err != nil:
				assert.Nil(t, counts)
				assert.Same(t, test.expected.err, err)
			case test.expected.wrapped != nil:
				assert.Nil(t, counts)
				assert.ErrorIs(t, err, test.expected.wrapped)
			default:
				require.NoError(t, err)
				assert.Equal(t, test.expected.counts, counts)
			}
		})
	}
}
