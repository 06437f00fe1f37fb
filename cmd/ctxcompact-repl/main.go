// Command ctxcompact-repl is an interactive playground for
// the compactor. Every input line becomes a user message;
// after each turn the history is passed through
// MaybeCompact with verbose logging on, so the trigger and
// the chosen strategy can be watched at work.
//
// Usage:
//
//	ctxcompact-repl --max-tokens 200 --trigger 0.8 --strategy keep_first_last
//	ctxcompact-repl --config compactor.yaml --openai-model gpt-4o-mini
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rickchristie/ctxcompact"
	"github.com/rickchristie/ctxcompact/compaction"
	"github.com/rickchristie/ctxcompact/summarizers"
	"github.com/rickchristie/ctxcompact/tokenizers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type options struct {
	configPath  string
	maxTokens   int
	trigger     float64
	strategy    string
	openAIModel string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n",
			colorRed, err, colorReset)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	summarizer, source := newSummarizer(opts.openAIModel)
	strategy, err := compaction.FromConfig[llms.MessageContent](
		cfg.Strategy, summarizer,
	)
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	counter := tokenizers.NewEstimate(summarizers.RoleText)
	compactor, err := ctxcompact.New(cfg, strategy, counter)
	if err != nil {
		return err
	}
	compactor.WithLogger(logger).SetVerbose(true)

	rl, err := readline.New(colorCyan + "you> " + colorReset)
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	printBanner(os.Stdout, cfg, source)

	s := &session{
		out:       os.Stdout,
		compactor: compactor,
		counter:   counter,
	}
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Printf("\n%sGoodbye!%s\n", colorGreen, colorReset)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		quit, err := s.handle(context.Background(), line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%sError: %v%s\n",
				colorRed, err, colorReset)
		}
		if quit {
			fmt.Printf("%sGoodbye!%s\n", colorGreen, colorReset)
			return nil
		}
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("ctxcompact-repl", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "",
		"YAML compactor config; flags below override it")
	flagSet.IntVar(&opts.maxTokens, "max-tokens", 0,
		"context window in tokens (default 128000)")
	flagSet.Float64Var(&opts.trigger, "trigger", 0,
		"fraction of the window that triggers compaction (default 0.8)")
	flagSet.StringVar(&opts.strategy, "strategy", "",
		"strategy name: keep_recent, keep_first_last, sliding_window, "+
			"drop_oldest, summarize_middle")
	flagSet.StringVar(&opts.openAIModel, "openai-model", "",
		"summarize with this OpenAI model (needs OPENAI_API_KEY)")

	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return options{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

// buildConfig layers flag overrides on top of the config
// file, or on the defaults when no file is given.
func buildConfig(opts options) (ctxcompact.Config, error) {
	cfg := ctxcompact.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := ctxcompact.LoadConfigFile(opts.configPath)
		if err != nil {
			return ctxcompact.Config{}, err
		}
		cfg = loaded
	}

	if opts.maxTokens != 0 {
		cfg.MaxContextTokens = opts.maxTokens
	}
	if opts.trigger != 0 {
		cfg.TriggerAtPercent = opts.trigger
	}
	if name := ctxcompact.StrategyName(opts.strategy); name != "" && name != cfg.Strategy.Name {
		cfg.Strategy = ctxcompact.StrategyConfig{Name: name}
	}
	fillStrategyDefaults(&cfg.Strategy)

	if err := cfg.Validate(); err != nil {
		return ctxcompact.Config{}, err
	}
	return cfg, nil
}

// fillStrategyDefaults gives flag-selected strategies usable
// keep counts, since the flags do not expose them.
func fillStrategyDefaults(s *ctxcompact.StrategyConfig) {
	switch s.Name {
	case ctxcompact.StrategyKeepRecent:
		if s.KeepCount == 0 {
			s.KeepCount = 6
		}
	case ctxcompact.StrategyKeepFirstLast, ctxcompact.StrategySummarizeMiddle:
		if s.KeepFirst == 0 && s.KeepLast == 0 {
			s.KeepFirst, s.KeepLast = 1, 4
		}
	}
}

// newSummarizer returns an OpenAI-backed summarizer when a
// model is requested and a key is available, otherwise the
// local one. The second result describes the choice.
func newSummarizer(model string) (ctxcompact.Summarizer[llms.MessageContent], string) {
	if model == "" {
		return localSummarizer(), "local"
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Printf("%sWarning: OPENAI_API_KEY not set, "+
			"using the local summarizer.%s\n", colorYellow, colorReset)
		return localSummarizer(), "local"
	}
	llm, err := openai.New(openai.WithModel(model))
	if err != nil {
		fmt.Printf("%sWarning: %v, using the local summarizer.%s\n",
			colorYellow, err, colorReset)
		return localSummarizer(), "local"
	}
	return summarizers.NewMessageContentLLM(llm).
		WithCallOptions(llms.WithTemperature(0)), "openai:" + model
}

const summaryLineLimit = 40

// localSummarizer condenses messages without a model: one
// line per message, truncated to summaryLineLimit runes.
func localSummarizer() ctxcompact.Summarizer[llms.MessageContent] {
	return ctxcompact.SummarizerFunc[llms.MessageContent](
		func(_ context.Context, messages []llms.MessageContent) (llms.MessageContent, error) {
			lines := make([]string, 0, len(messages))
			for _, m := range messages {
				lines = append(lines, "- "+truncate(summarizers.RoleText(m), summaryLineLimit))
			}
			return summarizers.SummaryMessage(strings.Join(lines, "\n")), nil
		},
	)
}

func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

func printBanner(w io.Writer, cfg ctxcompact.Config, summarizer string) {
	fmt.Fprintf(w, "\n%s%sctxcompact REPL%s\n", colorBold, colorYellow, colorReset)
	fmt.Fprintf(w, "%s%s%s\n", colorYellow, strings.Repeat("-", 15), colorReset)
	fmt.Fprintf(w, "  window %s%d%s tokens, compacts at %s%d%s, target %s%d%s\n",
		colorWhite, cfg.MaxContextTokens, colorReset,
		colorWhite, cfg.TriggerThreshold(), colorReset,
		colorWhite, cfg.TargetTokens(), colorReset)
	fmt.Fprintf(w, "  strategy %s%s%s, summarizer %s%s%s\n",
		colorWhite, cfg.Strategy.Name, colorReset,
		colorWhite, summarizer, colorReset)
	fmt.Fprintf(w, "\n  %s:stats%s   %s:reset%s   %s:history%s   %s:quit%s\n\n",
		colorCyan, colorReset, colorCyan, colorReset,
		colorCyan, colorReset, colorCyan, colorReset)
}
