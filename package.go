// Package ctxcompact keeps an agent's conversation history inside a
// model's context window.
//
// A [ContextCompactor] is called once per turn with the current history.
// It measures the history with a [TokenCounter], and when usage reaches
// the trigger threshold it hands the history to a [CompactionStrategy]
// which returns a shorter history. Messages are opaque to the engine: the
// compactor is generic over the message type, so the same engine works
// with langchaingo messages, Anthropic params, or a plain string.
//
// # Quick Start
//
//	counter := tokenizers.NewEstimate(func(m llms.MessageContent) string {
//	    return summarizers.MessageText(m)
//	})
//	strategy := compaction.NewSlidingWindow[llms.MessageContent]()
//
//	compactor, err := ctxcompact.New(ctxcompact.Config{
//	    MaxContextTokens: 128_000,
//	    TriggerAtPercent: 0.8,
//	    TargetPercent:    1.0,
//	}, strategy, counter)
//	if err != nil {
//	    return err
//	}
//
//	// Once per turn, before calling the model:
//	history, err = compactor.MaybeCompact(ctx, history)
//	if err != nil {
//	    return err // over budget and could not compact; do not send
//	}
//
// # Trigger and Target
//
// Compaction runs when the measured history reaches
// MaxContextTokens * TriggerAtPercent. The strategy is then asked to fit
// the history under MaxContextTokens * TargetPercent. The default target
// is the full window: the trigger leaves headroom, and the strategy uses
// all of it, so one compaction buys several turns.
//
// # Errors
//
// Counter and strategy errors are returned from [ContextCompactor.MaybeCompact]
// unmodified. There are no retries and no fallbacks: a caller that relies on
// compaction to stay under a hard limit must learn immediately that it did
// not happen. Stats are only updated for compactions that succeeded.
//
// # Concurrency
//
// A ContextCompactor is meant to serve one conversation. Stats are guarded
// so they can be read from another goroutine (e.g. a metrics scrape), but
// MaybeCompact calls are not serialized. If one instance is shared between
// conversations, callers must serialize per conversation, and the
// before/after figures in [CompactionStats] will interleave.
package ctxcompact
