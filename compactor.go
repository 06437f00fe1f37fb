package ctxcompact

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContextCompactor decides WHEN to compact a message history and
// delegates HOW to a CompactionStrategy.
//
// Call MaybeCompact once per turn with the full history. When the
// measured size is below the trigger threshold the history is returned
// as is. Otherwise the strategy is asked to fit the history under the
// target budget, the result is re-measured, and stats are updated.
//
// Example:
//
//	compactor, err := ctxcompact.New(
//	    ctxcompact.Config{MaxContextTokens: 1000, TriggerAtPercent: 0.8},
//	    compaction.NewSlidingWindow[Msg](),
//	    counter,
//	)
//	if err != nil {
//	    return err
//	}
//	compactor.WithLogger(logger).SetVerbose(true)
//
//	history, err = compactor.MaybeCompact(ctx, history)
type ContextCompactor[M any] struct {
	config   Config
	strategy CompactionStrategy[M]
	counter  TokenCounter[M]

	logger logrus.FieldLogger
	clock  TimeProvider
	hooks  []CompactionHook

	stats statsTracker
}

// New creates a ContextCompactor. cfg is validated here and never again;
// an invalid cfg, a nil strategy or a nil counter returns an error
// wrapping ErrInvalidConfig.
func New[M any](
	cfg Config,
	strategy CompactionStrategy[M],
	counter TokenCounter[M],
) (*ContextCompactor[M], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, fmt.Errorf("%w: strategy is required", ErrInvalidConfig)
	}
	if counter == nil {
		return nil, fmt.Errorf("%w: token counter is required", ErrInvalidConfig)
	}

	c := &ContextCompactor[M]{
		config:   cfg,
		strategy: strategy,
		counter:  counter,
		logger:   newDefaultLogger(),
		clock:    NewDefaultTimeProvider(),
	}
	c.stats.stats = CompactionStats{
		MaxContextTokens: cfg.MaxContextTokens,
		TriggerThreshold: cfg.TriggerThreshold(),
		TargetTokens:     cfg.TargetTokens(),
	}
	return c, nil
}

func newDefaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

// WithLogger sets the logger used when verbose is on. A nil logger
// restores the default stderr logger.
func (c *ContextCompactor[M]) WithLogger(logger logrus.FieldLogger) *ContextCompactor[M] {
	if logger == nil {
		logger = newDefaultLogger()
	}
	c.logger = logger
	return c
}

// WithTimeProvider sets the clock used to time compactions.
func (c *ContextCompactor[M]) WithTimeProvider(tp TimeProvider) *ContextCompactor[M] {
	if tp == nil {
		tp = NewDefaultTimeProvider()
	}
	c.clock = tp
	return c
}

// WithHooks appends hooks called after each successful compaction.
func (c *ContextCompactor[M]) WithHooks(hooks ...CompactionHook) *ContextCompactor[M] {
	for _, h := range hooks {
		if h != nil {
			c.hooks = append(c.hooks, h)
		}
	}
	return c
}

// SetVerbose toggles debug logging.
func (c *ContextCompactor[M]) SetVerbose(verbose bool) *ContextCompactor[M] {
	c.config.Verbose = verbose
	return c
}

// Config returns the compactor's configuration.
func (c *ContextCompactor[M]) Config() Config {
	return c.config
}

// TriggerThreshold returns the token count at which compaction runs.
func (c *ContextCompactor[M]) TriggerThreshold() int {
	return c.config.TriggerThreshold()
}

// TargetTokens returns the budget handed to the strategy.
func (c *ContextCompactor[M]) TargetTokens() int {
	return c.config.TargetTokens()
}

// MaybeCompact compacts messages if their size has reached the trigger
// threshold, and otherwise returns them unchanged.
//
// Errors from the token counter or the strategy are returned unmodified
// and leave stats untouched; the compactor stays usable for the next
// call. messages is never modified.
func (c *ContextCompactor[M]) MaybeCompact(ctx context.Context, messages []M) ([]M, error) {
	current, err := c.counter.CountTokens(ctx, messages)
	if err != nil {
		return nil, err
	}

	threshold := c.config.TriggerThreshold()
	if c.config.Verbose {
		c.logger.WithFields(logrus.Fields{
			"tokens":     current,
			"max_tokens": c.config.MaxContextTokens,
			"threshold":  threshold,
			"messages":   len(messages),
		}).Info("compactor: measured history")
	}

	if current < threshold {
		return messages, nil
	}

	target := c.config.TargetTokens()
	if c.config.Verbose {
		c.logger.WithFields(logrus.Fields{
			"trigger_percent": c.config.TriggerAtPercent * 100,
			"target_tokens":   target,
		}).Info("compactor: threshold reached, compacting")
	}

	start := c.clock.Now()
	compacted, err := c.strategy.Compact(ctx, messages, target, c.counter)
	if err != nil {
		return nil, err
	}
	after, err := c.counter.CountTokens(ctx, compacted)
	if err != nil {
		return nil, err
	}
	elapsed := c.clock.Now().Sub(start)

	c.stats.record(compactionRecord{
		tokensBefore:   current,
		tokensAfter:    after,
		messagesBefore: len(messages),
		messagesAfter:  len(compacted),
		duration:       elapsed,
	})

	if c.config.Verbose {
		reduction := 0.0
		if current > 0 {
			reduction = (1 - float64(after)/float64(current)) * 100
		}
		c.logger.WithFields(logrus.Fields{
			"tokens_before":   current,
			"tokens_after":    after,
			"messages_before": len(messages),
			"messages_after":  len(compacted),
			"reduction_pct":   fmt.Sprintf("%.1f", reduction),
			"duration":        elapsed,
		}).Info("compactor: history compacted")
	}

	if len(c.hooks) > 0 {
		event := CompactionEvent{
			ID:             uuid.New(),
			TokensBefore:   current,
			TokensAfter:    after,
			MessagesBefore: len(messages),
			MessagesAfter:  len(compacted),
			TargetTokens:   target,
			Duration:       elapsed,
		}
		for _, h := range c.hooks {
			h.OnCompaction(ctx, event)
		}
	}

	return compacted, nil
}

// Stats returns a snapshot of the compaction counters.
func (c *ContextCompactor[M]) Stats() CompactionStats {
	return c.stats.snapshot()
}

// ResetStats zeroes the compaction counters.
func (c *ContextCompactor[M]) ResetStats() {
	c.stats.reset()
}

// AsProcessor returns MaybeCompact as a HistoryProcessor, for wiring
// into host SDKs that accept a history-rewriting callback.
func (c *ContextCompactor[M]) AsProcessor() HistoryProcessor[M] {
	return c.MaybeCompact
}
