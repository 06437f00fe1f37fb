package ctxcompact

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CompactionHook is implemented by hooks that want to be notified after
// each successful compaction.
//
// Hooks are called in registration order, after stats have been
// recorded and before MaybeCompact returns. They are not called for
// no-op calls or for failed attempts. Hooks should not block; a hook
// that needs to do I/O should hand the event off.
//
// Example:
//
//	type AuditHook struct {
//	    log logrus.FieldLogger
//	}
//
//	func (h *AuditHook) OnCompaction(
//	    ctx context.Context,
//	    event ctxcompact.CompactionEvent,
//	) {
//	    h.log.WithField("id", event.ID).Info("history compacted")
//	}
//
//	compactor.WithHooks(&AuditHook{log: logger})
type CompactionHook interface {
	// OnCompaction is called once per successful compaction.
	OnCompaction(ctx context.Context, event CompactionEvent)
}

// CompactionHookFunc adapts a plain function to CompactionHook.
type CompactionHookFunc func(ctx context.Context, event CompactionEvent)

// OnCompaction calls f.
func (f CompactionHookFunc) OnCompaction(ctx context.Context, event CompactionEvent) {
	f(ctx, event)
}

// CompactionEvent describes one successful compaction.
type CompactionEvent struct {
	// ID uniquely identifies this compaction, for correlating log
	// lines, traces and audit records.
	ID uuid.UUID

	// TokensBefore and TokensAfter are the measured sizes around the
	// strategy call.
	TokensBefore int
	TokensAfter  int

	// MessagesBefore and MessagesAfter are the history lengths around
	// the strategy call.
	MessagesBefore int
	MessagesAfter  int

	// TargetTokens is the budget the strategy was given.
	TargetTokens int

	// Duration is the time spent in the strategy and re-measuring.
	Duration time.Duration
}

// Compile-time check.
var _ CompactionHook = CompactionHookFunc(nil)
