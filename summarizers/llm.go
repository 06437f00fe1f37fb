// Package summarizers provides ctxcompact.Summarizer
// implementations backed by langchaingo models.
//
// [LLM] works with any message type given functions to
// render a message as text and to wrap the summary text
// back into a message. [NewMessageContentLLM] is the
// preset for langchaingo's own llms.MessageContent.
package summarizers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rickchristie/ctxcompact"
	"github.com/tmc/langchaingo/llms"
)

// LLM summarizes a run of messages with one model call.
//
// The messages are rendered into a transcript, the
// transcript is placed in the prompt, and the model's
// first choice becomes the summary message. The call is
// made once; there is no retry.
//
// Errors from the model wrap ctxcompact.ErrSummarizationFailed.
// A response without text returns ctxcompact.ErrEmptySummary.
//
// Example:
//
//	summarizer := summarizers.NewLLM(
//	    model,
//	    func(m Msg) string { return m.Role + ": " + m.Text },
//	    func(s string) Msg { return Msg{Role: "system", Text: s} },
//	).WithCallOptions(llms.WithMaxTokens(1024))
type LLM[M any] struct {
	model  llms.Model
	render func(M) string
	wrap   func(string) M
	prompt string
	opts   []llms.CallOption
}

// NewLLM creates an LLM summarizer using DefaultPrompt.
func NewLLM[M any](
	model llms.Model,
	render func(M) string,
	wrap func(string) M,
) *LLM[M] {
	return &LLM[M]{
		model:  model,
		render: render,
		wrap:   wrap,
		prompt: DefaultPrompt,
	}
}

// WithPrompt sets a custom prompt. The prompt receives the
// transcript through a single fmt.Sprintf %s placeholder.
func (s *LLM[M]) WithPrompt(prompt string) *LLM[M] {
	s.prompt = prompt
	return s
}

// WithCallOptions sets options passed to every model call,
// e.g. llms.WithMaxTokens or llms.WithTemperature.
func (s *LLM[M]) WithCallOptions(opts ...llms.CallOption) *LLM[M] {
	s.opts = opts
	return s
}

// Summarize implements ctxcompact.Summarizer.
func (s *LLM[M]) Summarize(ctx context.Context, messages []M) (M, error) {
	var zero M

	prompt := fmt.Sprintf(s.prompt, s.transcript(messages))
	response, err := s.model.GenerateContent(
		ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		s.opts...,
	)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ctxcompact.ErrSummarizationFailed, err)
	}
	if response == nil || len(response.Choices) == 0 {
		return zero, ctxcompact.ErrEmptySummary
	}

	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return zero, ctxcompact.ErrEmptySummary
	}
	return s.wrap(text), nil
}

// transcript formats messages with numbered markers.
func (s *LLM[M]) transcript(messages []M) string {
	var sb strings.Builder
	for i, m := range messages {
		fmt.Fprintf(&sb, "### Message %d\n\n", i+1)
		sb.WriteString(s.render(m))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// DefaultPrompt is the prompt used by [LLM] unless
// replaced with [LLM.WithPrompt]. It takes the transcript
// through one %s placeholder.
//
// The summarized messages sit in the middle of a longer
// conversation: the messages before and after them are
// kept verbatim. The prompt therefore asks for a handoff
// note about what happened in between, with exact
// identifiers, and forbids closing language because the
// conversation continues right after the summary.
const DefaultPrompt = `You are compressing part of a ` +
	`conversation between a user and an AI agent. The ` +
	`messages below will be removed from the agent's ` +
	`context and replaced by your summary. The messages ` +
	`before and after them are kept as they are, so the ` +
	`agent will read your summary in place of this ` +
	`stretch of the conversation.

## Messages to Summarize

%s

## Output Format

### Requests
What the user asked for or changed in these messages. ` +
	`Quote short instructions verbatim.

### Actions & Results
What the agent did and what came of it. Keep exact ` +
	`names, paths, values, error messages, and ` +
	`configuration details.

### Decisions
Choices made and constraints discovered that still ` +
	`apply. Omit this section if none.

### Open Items
Work that was started or promised but not finished. ` +
	`Do not invent new tasks.

## Rules
- Prefer detail about the latest messages over older ones
- Do not repeat large verbatim blocks; reference them
- Do not conclude; the conversation continues after ` +
	`this summary
- Write only the sections above, no preamble`

// Compile-time check.
var _ ctxcompact.Summarizer[string] = (*LLM[string])(nil)
