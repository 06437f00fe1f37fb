package tt

import (
	"context"
	"fmt"

	"github.com/rickchristie/ctxcompact"
	"github.com/tmc/langchaingo/llms"
)

// -----------------------------------------------------------------------------
// Msg - opaque test message with a fixed token cost
// -----------------------------------------------------------------------------

// Msg is the message type used across tests. ID gives each message a
// distinct identity; Tokens is its cost under MockCounter.
type Msg struct {
	ID     string
	Tokens int
}

// Msgs creates one message per cost, with IDs m0, m1, ...
func Msgs(costs ...int) []Msg {
	result := make([]Msg, len(costs))
	for i, c := range costs {
		result[i] = Msg{ID: fmt.Sprintf("m%d", i), Tokens: c}
	}
	return result
}

// UniformMsgs creates n messages that each cost the same.
func UniformMsgs(n, cost int) []Msg {
	costs := make([]int, n)
	for i := range costs {
		costs[i] = cost
	}
	return Msgs(costs...)
}

// -----------------------------------------------------------------------------
// MockCounter - implements ctxcompact.PerMessageCounter[Msg]
// -----------------------------------------------------------------------------

// MockCounter counts Msg.Tokens. By default it is additive: the total is
// the sum of per-message costs. WithFraming adds a fixed cost to every
// non-empty total, which makes it non-additive the way real chat
// tokenizers are.
type MockCounter struct {
	framing   int
	failures  map[int]error
	perMsgErr error

	countCalls      int
	perMessageCalls int
}

// NewMockCounter creates an additive MockCounter.
func NewMockCounter() *MockCounter {
	return &MockCounter{failures: make(map[int]error)}
}

// WithFraming adds n tokens to every non-empty CountTokens total.
func (c *MockCounter) WithFraming(n int) *MockCounter {
	c.framing = n
	return c
}

// FailOnCall makes the call-th CountTokens call (1-based) return err.
func (c *MockCounter) FailOnCall(call int, err error) *MockCounter {
	c.failures[call] = err
	return c
}

// FailPerMessage makes every CountPerMessage call return err.
func (c *MockCounter) FailPerMessage(err error) *MockCounter {
	c.perMsgErr = err
	return c
}

// CountCalls returns the number of CountTokens calls made so far.
func (c *MockCounter) CountCalls() int {
	return c.countCalls
}

// PerMessageCalls returns the number of CountPerMessage calls made so far.
func (c *MockCounter) PerMessageCalls() int {
	return c.perMessageCalls
}

// CountTokens implements ctxcompact.TokenCounter.
func (c *MockCounter) CountTokens(_ context.Context, messages []Msg) (int, error) {
	c.countCalls++
	if err, ok := c.failures[c.countCalls]; ok {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}
	total := c.framing
	for _, m := range messages {
		total += m.Tokens
	}
	return total, nil
}

// CountPerMessage implements ctxcompact.PerMessageCounter.
func (c *MockCounter) CountPerMessage(_ context.Context, messages []Msg) ([]int, error) {
	c.perMessageCalls++
	if c.perMsgErr != nil {
		return nil, c.perMsgErr
	}
	counts := make([]int, len(messages))
	for i, m := range messages {
		counts[i] = m.Tokens
	}
	return counts, nil
}

// TotalOnly hides CountPerMessage, leaving a plain TokenCounter. Use it
// to exercise the measure-each-message fallback.
type TotalOnly struct {
	Counter *MockCounter
}

// CountTokens implements ctxcompact.TokenCounter.
func (t TotalOnly) CountTokens(ctx context.Context, messages []Msg) (int, error) {
	return t.Counter.CountTokens(ctx, messages)
}

// -----------------------------------------------------------------------------
// MockStrategy - implements ctxcompact.CompactionStrategy[Msg]
// -----------------------------------------------------------------------------

// StrategyCall captures the arguments of one Compact call.
type StrategyCall struct {
	Messages     []Msg
	TargetTokens int
}

// MockStrategy returns a configured result (or keeps the last keep
// messages) and records every call.
type MockStrategy struct {
	keep   int
	result []Msg
	err    error

	Calls []StrategyCall
}

// NewMockStrategy creates a MockStrategy that keeps the last keep
// messages.
func NewMockStrategy(keep int) *MockStrategy {
	return &MockStrategy{keep: keep}
}

// WithResult makes Compact return result verbatim.
func (s *MockStrategy) WithResult(result []Msg) *MockStrategy {
	s.result = result
	return s
}

// WithError makes Compact fail with err.
func (s *MockStrategy) WithError(err error) *MockStrategy {
	s.err = err
	return s
}

// Compact implements ctxcompact.CompactionStrategy.
func (s *MockStrategy) Compact(
	_ context.Context,
	messages []Msg,
	targetTokens int,
	_ ctxcompact.TokenCounter[Msg],
) ([]Msg, error) {
	s.Calls = append(s.Calls, StrategyCall{
		Messages:     messages,
		TargetTokens: targetTokens,
	})
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	if len(messages) <= s.keep {
		return messages, nil
	}
	kept := make([]Msg, s.keep)
	copy(kept, messages[len(messages)-s.keep:])
	return kept, nil
}

// -----------------------------------------------------------------------------
// MockSummarizer - implements ctxcompact.Summarizer[Msg]
// -----------------------------------------------------------------------------

// MockSummarizer returns a fixed summary message and records its inputs.
type MockSummarizer struct {
	summary Msg
	err     error

	Inputs [][]Msg
}

// NewMockSummarizer creates a MockSummarizer that always returns summary.
func NewMockSummarizer(summary Msg) *MockSummarizer {
	return &MockSummarizer{summary: summary}
}

// WithError makes Summarize fail with err.
func (s *MockSummarizer) WithError(err error) *MockSummarizer {
	s.err = err
	return s
}

// CallCount returns the number of Summarize calls.
func (s *MockSummarizer) CallCount() int {
	return len(s.Inputs)
}

// Summarize implements ctxcompact.Summarizer.
func (s *MockSummarizer) Summarize(_ context.Context, messages []Msg) (Msg, error) {
	s.Inputs = append(s.Inputs, messages)
	if s.err != nil {
		return Msg{}, s.err
	}
	return s.summary, nil
}

// -----------------------------------------------------------------------------
// MockLLM - implements llms.Model
// -----------------------------------------------------------------------------

// MockLLM is a configurable llms.Model for summarizer tests.
type MockLLM struct {
	responses []*llms.ContentResponse
	errors    []error
	callCount int

	// CapturedMessages stores the messages passed to each
	// GenerateContent call.
	CapturedMessages [][]llms.MessageContent

	// CapturedOptions stores the resolved call options of each call.
	CapturedOptions []llms.CallOptions
}

// NewMockLLM creates a MockLLM with no queued responses.
func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// AddResponse queues a single-choice response with the given content.
func (m *MockLLM) AddResponse(content string) *MockLLM {
	m.responses = append(m.responses, &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content}},
	})
	m.errors = append(m.errors, nil)
	return m
}

// AddRawResponse queues a raw ContentResponse.
// Use this when you need full control over the response
// structure (e.g., empty Choices slice).
func (m *MockLLM) AddRawResponse(resp *llms.ContentResponse) *MockLLM {
	m.responses = append(m.responses, resp)
	m.errors = append(m.errors, nil)
	return m
}

// AddError queues an error for the next call.
func (m *MockLLM) AddError(err error) *MockLLM {
	m.responses = append(m.responses, nil)
	m.errors = append(m.errors, err)
	return m
}

// CallCount returns the number of times GenerateContent has been called.
func (m *MockLLM) CallCount() int {
	return m.callCount
}

// GenerateContent implements llms.Model.
func (m *MockLLM) GenerateContent(
	_ context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	idx := m.callCount
	m.callCount++

	m.CapturedMessages = append(m.CapturedMessages, messages)
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	m.CapturedOptions = append(m.CapturedOptions, opts)

	if idx >= len(m.responses) {
		return nil, fmt.Errorf("mock llm: no response queued for call %d", idx+1)
	}
	if m.errors[idx] != nil {
		return nil, m.errors[idx]
	}
	return m.responses[idx], nil
}

// Call implements llms.Model.
func (m *MockLLM) Call(
	ctx context.Context,
	prompt string,
	options ...llms.CallOption,
) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// Compile-time checks.
var (
	_ ctxcompact.PerMessageCounter[Msg]  = (*MockCounter)(nil)
	_ ctxcompact.TokenCounter[Msg]       = TotalOnly{}
	_ ctxcompact.CompactionStrategy[Msg] = (*MockStrategy)(nil)
	_ ctxcompact.Summarizer[Msg]         = (*MockSummarizer)(nil)
	_ llms.Model                         = (*MockLLM)(nil)
)
