// Package compaction provides the built-in
// CompactionStrategy implementations for ctxcompact.
//
// All strategies are generic over the message type and
// never inspect message contents: they select by position
// and, for the budget-aware ones, by the costs reported
// by the TokenCounter they are handed.
//
// # Count-based
//
//   - [KeepRecentMessages]: keeps the last N messages
//   - [KeepFirstLast]: keeps the first N and the last M
//
// # Budget-based
//
//   - [SlidingWindow]: longest recent suffix that fits
//   - [DropOldestUntilFits]: drops from the front until
//     the history fits
//
// # Summarization
//
//   - [SummarizeMiddle]: keeps head and tail, replaces
//     the middle with one summary message
//
// Use [FromConfig] to build a strategy from a
// ctxcompact.StrategyConfig, e.g. one loaded from YAML.
package compaction
