package summarizers

import (
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// SummaryPrefix labels summary messages produced by
// NewMessageContentLLM.
const SummaryPrefix = "[Conversation Summary]\n"

// NewMessageContentLLM creates an LLM summarizer for
// langchaingo messages. The transcript shows each message
// as "role: text"; the summary comes back as a system
// message starting with SummaryPrefix.
func NewMessageContentLLM(model llms.Model) *LLM[llms.MessageContent] {
	return NewLLM(model, RoleText, SummaryMessage)
}

// MessageText extracts all text content from a message,
// dropping non-text content parts.
func MessageText(m llms.MessageContent) string {
	var parts []string
	for _, part := range m.Parts {
		if tc, ok := part.(llms.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// RoleText renders a message as "role: text".
func RoleText(m llms.MessageContent) string {
	return string(m.Role) + ": " + MessageText(m)
}

// SummaryMessage wraps summary text in a system message.
func SummaryMessage(summary string) llms.MessageContent {
	return llms.TextParts(llms.ChatMessageTypeSystem, SummaryPrefix+summary)
}

// IsSummary reports whether m was produced by SummaryMessage.
func IsSummary(m llms.MessageContent) bool {
	return m.Role == llms.ChatMessageTypeSystem &&
		strings.HasPrefix(MessageText(m), SummaryPrefix)
}
