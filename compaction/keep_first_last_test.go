package compaction

import (
	"context"
	"testing"

	"github.com/rickchristie/ctxcompact"
	"github.com/rickchristie/ctxcompact/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepFirstLast_Compact(t *testing.T) {
	type input struct {
		keepFirst int
		keepLast  int
		messages  []tt.Msg
	}

	type expected struct {
		ids string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "first 2 last 3 of 10",
			input: input{
				keepFirst: 2,
				keepLast:  3,
				messages:  tt.UniformMsgs(10, 10),
			},
			expected: expected{ids: "m0,m1,m7,m8,m9"},
		},
		{
			name: "windows exactly cover history unchanged",
			input: input{
				keepFirst: 2,
				keepLast:  3,
				messages:  tt.UniformMsgs(5, 10),
			},
			expected: expected{ids: "m0,m1,m2,m3,m4"},
		},
		{
			name: "overlapping windows never duplicate",
			input: input{
				keepFirst: 3,
				keepLast:  3,
				messages:  tt.UniformMsgs(4, 10),
			},
			expected: expected{ids: "m0,m1,m2,m3"},
		},
		{
			name: "head only",
			input: input{
				keepFirst: 2,
				keepLast:  0,
				messages:  tt.UniformMsgs(5, 10),
			},
			expected: expected{ids: "m0,m1"},
		},
		{
			name: "tail only",
			input: input{
				keepFirst: 0,
				keepLast:  2,
				messages:  tt.UniformMsgs(5, 10),
			},
			expected: expected{ids: "m3,m4"},
		},
		{
			name: "keep nothing",
			input: input{
				keepFirst: 0,
				keepLast:  0,
				messages:  tt.UniformMsgs(3, 10),
			},
			expected: expected{ids: ""},
		},
		{
			name: "empty history",
			input: input{
				keepFirst: 1,
				keepLast:  1,
				messages:  nil,
			},
			expected: expected{ids: ""},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			strategy, err := NewKeepFirstLast[tt.Msg](
				test.input.keepFirst, test.input.keepLast,
			)
			require.NoError(t, err)

			original := append([]tt.Msg(nil), test.input.messages...)

			result, err := strategy.Compact(
				context.Background(),
				test.input.messages,
				1,
				tt.NewMockCounter(),
			)

			require.NoError(t, err)
			assert.Equal(t, test.expected.ids, tt.IDs(result))
			assert.LessOrEqual(t, len(result), len(test.input.messages))
			tt.AssertOrderPreserved(t, test.input.messages, result)
			tt.AssertMessagesEqual(t, original, test.input.messages)
		})
	}
}

func TestNewKeepFirstLast_Invalid(t *testing.T) {
	type input struct {
		keepFirst int
		keepLast  int
	}

	tests := []struct {
		name  string
		input input
	}{
		{name: "negative first", input: input{keepFirst: -1, keepLast: 2}},
		{name: "negative last", input: input{keepFirst: 2, keepLast: -1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			strategy, err := NewKeepFirstLast[tt.Msg](
				test.input.keepFirst, test.input.keepLast,
			)
			assert.Nil(t, strategy)
			assert.ErrorIs(t, err, ctxcompact.ErrInvalidConfig)
		})
	}
}
