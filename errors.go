package ctxcompact

import "errors"

// Sentinel errors.
//
// ContextCompactor never wraps errors coming from a TokenCounter or a
// CompactionStrategy; it returns them as they are. The sentinels below
// are used by configuration validation and by the bundled collaborators
// (tokenizers, summarizers) so callers can classify failures with
// errors.Is.
var (
	// ErrInvalidConfig indicates invalid constructor arguments. It is
	// returned eagerly at construction, never at compaction time.
	ErrInvalidConfig = errors.New("ctxcompact: invalid configuration")

	// ErrTokenCountingFailed indicates a token counter could not
	// measure the history (e.g. the tokenizer service was unreachable).
	ErrTokenCountingFailed = errors.New("ctxcompact: token counting failed")

	// ErrSummarizationFailed indicates the summarization call failed.
	ErrSummarizationFailed = errors.New("ctxcompact: summarization failed")

	// ErrEmptySummary indicates the summarizer returned no content.
	ErrEmptySummary = errors.New("ctxcompact: summarizer returned no content")
)
