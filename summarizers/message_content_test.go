package summarizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"
)

func TestMessageText(t *testing.T) {
	tests := []struct {
		name     string
		input    llms.MessageContent
		expected string
	}{
		{
			name:     "single text part",
			input:    llms.TextParts(llms.ChatMessageTypeHuman, "hello"),
			expected: "hello",
		},
		{
			name:     "multiple text parts joined by newline",
			input:    llms.TextParts(llms.ChatMessageTypeAI, "one", "two"),
			expected: "one\ntwo",
		},
		{
			name: "non-text parts dropped",
			input: llms.MessageContent{
				Role: llms.ChatMessageTypeHuman,
				Parts: []llms.ContentPart{
					llms.ImageURLContent{URL: "https://example.com/a.png"},
					llms.TextContent{Text: "look at this"},
				},
			},
			expected: "look at this",
		},
		{
			name:     "no parts",
			input:    llms.MessageContent{Role: llms.ChatMessageTypeHuman},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MessageText(tt.input))
		})
	}
}

func TestRoleText(t *testing.T) {
	m := llms.TextParts(llms.ChatMessageTypeAI, "done")
	assert.Equal(t, "ai: done", RoleText(m))
}

func TestIsSummary(t *testing.T) {
	assert.True(t, IsSummary(SummaryMessage("x")))
	assert.False(t, IsSummary(llms.TextParts(llms.ChatMessageTypeSystem, "You are helpful.")))
	assert.False(t, IsSummary(llms.TextParts(llms.ChatMessageTypeHuman, SummaryPrefix+"x")))
}
