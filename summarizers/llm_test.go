package summarizers

import (
	"context"
	"errors"
	"testing"

	"github.com/rickchristie/ctxcompact"
	"github.com/rickchristie/ctxcompact/compaction"
	"github.com/rickchristie/ctxcompact/internal/tt"
	"github.com/rickchristie/ctxcompact/tokenizers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func identity(s string) string { return s }

func labelled(s string) string { return "S:" + s }

func TestLLM_Summarize(t *testing.T) {
	modelErr := errors.New("rate limited")

	type input struct {
		setup    func(m *tt.MockLLM)
		messages []string
	}

	type expected struct {
		summary string
		err     error
		cause   error
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "first choice becomes the summary",
			input: input{
				setup: func(m *tt.MockLLM) {
					m.AddResponse("  user asked for X; agent did Y  ")
				},
				messages: []string{"do X", "did Y"},
			},
			expected: expected{summary: "S:user asked for X; agent did Y"},
		},
		{
			name: "model error",
			input: input{
				setup:    func(m *tt.MockLLM) { m.AddError(modelErr) },
				messages: []string{"a", "b"},
			},
			expected: expected{
				err:   ctxcompact.ErrSummarizationFailed,
				cause: modelErr,
			},
		},
		{
			name: "no choices",
			input: input{
				setup: func(m *tt.MockLLM) {
					m.AddRawResponse(&llms.ContentResponse{})
				},
				messages: []string{"a", "b"},
			},
			expected: expected{err: ctxcompact.ErrEmptySummary},
		},
		{
			name: "blank content",
			input: input{
				setup:    func(m *tt.MockLLM) { m.AddResponse(" \n\t ") },
				messages: []string{"a", "b"},
			},
			expected: expected{err: ctxcompact.ErrEmptySummary},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			model := tt.NewMockLLM()
			test.input.setup(model)
			summarizer := NewLLM(model, identity, labelled)

			summary, err := summarizer.Summarize(
				context.Background(), test.input.messages,
			)

			assert.Equal(t, 1, model.CallCount())
			if test.expected.err != nil {
				assert.ErrorIs(t, err, test.expected.err)
				if test.expected.cause != nil {
					assert.ErrorIs(t, err, test.expected.cause)
				}
				assert.Empty(t, summary)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected.summary, summary)
		})
	}
}

func TestLLM_DefaultPromptCarriesTranscript(t *testing.T) {
	model := tt.NewMockLLM().AddResponse("ok")
	summarizer := NewLLM(model, identity, identity)

	_, err := summarizer.Summarize(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	require.Len(t, model.CapturedMessages, 1)
	sent := model.CapturedMessages[0]
	require.Len(t, sent, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, sent[0].Role)

	prompt := MessageText(sent[0])
	assert.Contains(t, prompt, "## Messages to Summarize")
	assert.Contains(t, prompt, "### Message 1\n\nfirst\n\n### Message 2\n\nsecond\n\n")
	assert.NotContains(t, prompt, "%!")
}

func TestLLM_WithPromptAndCallOptions(t *testing.T) {
	model := tt.NewMockLLM().AddResponse("ok")
	summarizer := NewLLM(model, identity, identity).
		WithPrompt("Summarize:\n%s").
		WithCallOptions(llms.WithMaxTokens(256), llms.WithTemperature(0.1))

	_, err := summarizer.Summarize(context.Background(), []string{"a"})
	require.NoError(t, err)

	assert.Equal(t,
		"Summarize:\n### Message 1\n\na\n\n",
		MessageText(model.CapturedMessages[0][0]),
	)
	require.Len(t, model.CapturedOptions, 1)
	assert.Equal(t, 256, model.CapturedOptions[0].MaxTokens)
	assert.InDelta(t, 0.1, model.CapturedOptions[0].Temperature, 1e-9)
}

func TestMessageContentLLM_WithSummarizeMiddle(t *testing.T) {
	model := tt.NewMockLLM().AddResponse("the user and agent discussed setup")
	summarizer := NewMessageContentLLM(model)

	strategy, err := compaction.NewSummarizeMiddle(1, 1, ctxcompact.Summarizer[llms.MessageContent](summarizer))
	require.NoError(t, err)

	history := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "You are helpful."),
		llms.TextParts(llms.ChatMessageTypeHuman, "hello"),
		llms.TextParts(llms.ChatMessageTypeAI, "hi, how can I help?"),
		llms.TextParts(llms.ChatMessageTypeHuman, "set up the project"),
		llms.TextParts(llms.ChatMessageTypeHuman, "what next?"),
	}
	counter := tokenizers.NewEstimate(MessageText)

	result, err := strategy.Compact(context.Background(), history, 10, counter)

	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, history[0], result[0])
	assert.True(t, IsSummary(result[1]))
	assert.Equal(t,
		SummaryPrefix+"the user and agent discussed setup",
		MessageText(result[1]),
	)
	assert.Equal(t, history[4], result[2])

	prompt := MessageText(model.CapturedMessages[0][0])
	assert.Contains(t, prompt, "human: hello")
	assert.Contains(t, prompt, "ai: hi, how can I help?")
	assert.NotContains(t, prompt, "You are helpful.")
}
