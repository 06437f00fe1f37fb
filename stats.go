package ctxcompact

import (
	"sync"
	"time"
)

// CompactionStats is a snapshot of a compactor's counters.
//
// Values are copied out of the compactor by [ContextCompactor.Stats];
// mutating a snapshot has no effect on the compactor.
//
// # Lifecycle
//
// Counters start at zero when the compactor is constructed. They are
// updated only after a strategy returned successfully and the result was
// re-measured. A no-op call (usage below the trigger threshold) and a
// failed call (counter or strategy error) leave them untouched.
// [ContextCompactor.ResetStats] zeroes them again.
//
// MaxContextTokens, TriggerThreshold and TargetTokens echo the
// compactor's configuration and survive ResetStats.
type CompactionStats struct {
	// TotalCompactions is the number of triggering calls that succeeded.
	TotalCompactions int

	// TotalMessagesRemoved sums, over all compactions, the drop in
	// message count. A compaction that grew the history adds 0.
	TotalMessagesRemoved int

	// TotalTokensRemoved sums, over all compactions, the drop in token
	// count. A compaction that grew the history adds 0.
	TotalTokensRemoved int

	// LastTokensBefore is the measured size before the last compaction.
	LastTokensBefore int

	// LastTokensAfter is the measured size after the last compaction.
	LastTokensAfter int

	// TotalDuration is the cumulative time spent in strategies plus
	// re-measuring their results.
	TotalDuration time.Duration

	// MaxContextTokens is the configured context window.
	MaxContextTokens int

	// TriggerThreshold is the token count at which compaction runs.
	TriggerThreshold int

	// TargetTokens is the budget handed to the strategy.
	TargetTokens int
}

// compactionRecord is the outcome of one successful compaction, fed to
// statsTracker.record.
type compactionRecord struct {
	tokensBefore   int
	tokensAfter    int
	messagesBefore int
	messagesAfter  int
	duration       time.Duration
}

// statsTracker owns the mutable counters. All methods are safe for
// concurrent use so a metrics scrape can read while a compaction runs.
type statsTracker struct {
	mu    sync.Mutex
	stats CompactionStats
}

func (s *statsTracker) record(r compactionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalCompactions++
	s.stats.TotalMessagesRemoved += max(r.messagesBefore-r.messagesAfter, 0)
	s.stats.TotalTokensRemoved += max(r.tokensBefore-r.tokensAfter, 0)
	s.stats.LastTokensBefore = r.tokensBefore
	s.stats.LastTokensAfter = r.tokensAfter
	s.stats.TotalDuration += r.duration
}

func (s *statsTracker) snapshot() CompactionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// reset zeroes the counters but keeps the configuration echoes.
func (s *statsTracker) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = CompactionStats{
		MaxContextTokens: s.stats.MaxContextTokens,
		TriggerThreshold: s.stats.TriggerThreshold,
		TargetTokens:     s.stats.TargetTokens,
	}
}
