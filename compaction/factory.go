package compaction

import (
	"fmt"

	"github.com/rickchristie/ctxcompact"
)

// FromConfig builds the built-in strategy named by cfg.
// An empty name selects ctxcompact.DefaultStrategy.
//
// summarizer is only used by summarize_middle, for which
// it is required; pass nil otherwise.
//
// Example:
//
//	cfg, err := ctxcompact.LoadConfigFile("compaction.yaml")
//	if err != nil {
//	    return err
//	}
//	strategy, err := compaction.FromConfig[Msg](
//	    cfg.Strategy, summarizer,
//	)
func FromConfig[M any](
	cfg ctxcompact.StrategyConfig,
	summarizer ctxcompact.Summarizer[M],
) (ctxcompact.CompactionStrategy[M], error) {
	if cfg.Name == "" {
		cfg.Name = ctxcompact.DefaultStrategy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		strategy ctxcompact.CompactionStrategy[M]
		err      error
	)
	switch cfg.Name {
	case ctxcompact.StrategyKeepRecent:
		strategy, err = orNil[M](NewKeepRecent[M](cfg.KeepCount))
	case ctxcompact.StrategyKeepFirstLast:
		strategy, err = orNil[M](NewKeepFirstLast[M](cfg.KeepFirst, cfg.KeepLast))
	case ctxcompact.StrategySlidingWindow:
		strategy = NewSlidingWindow[M]()
	case ctxcompact.StrategyDropOldest:
		s := NewDropOldest[M]()
		if cfg.Recount {
			s.WithRecount()
		}
		strategy = s
	case ctxcompact.StrategySummarizeMiddle:
		strategy, err = orNil[M](NewSummarizeMiddle(cfg.KeepFirst, cfg.KeepLast, summarizer))
	default:
		err = fmt.Errorf(
			"%w: unknown strategy %q",
			ctxcompact.ErrInvalidConfig, cfg.Name,
		)
	}
	if err != nil {
		return nil, err
	}
	return strategy, nil
}

// orNil converts a constructor result to the interface,
// keeping a failed construction an untyped nil.
func orNil[M any, S ctxcompact.CompactionStrategy[M]](
	s S, err error,
) (ctxcompact.CompactionStrategy[M], error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
