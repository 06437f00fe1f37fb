package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rickchristie/ctxcompact"
	"github.com/rickchristie/ctxcompact/summarizers"
	"github.com/tmc/langchaingo/llms"
)

// session holds the conversation between turns.
type session struct {
	out       io.Writer
	compactor *ctxcompact.ContextCompactor[llms.MessageContent]
	counter   ctxcompact.TokenCounter[llms.MessageContent]
	history   []llms.MessageContent
}

// handle processes one input line. It reports whether the
// user asked to quit.
func (s *session) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false, nil
	case ":quit", ":q":
		return true, nil
	case ":stats":
		s.printStats()
		return false, nil
	case ":reset":
		s.history = nil
		s.compactor.ResetStats()
		fmt.Fprintf(s.out, "%sHistory and stats cleared.%s\n", colorGreen, colorReset)
		return false, nil
	case ":history":
		return false, s.printHistory(ctx)
	}
	if strings.HasPrefix(line, ":") {
		return false, fmt.Errorf("unknown command %q", line)
	}

	s.history = append(s.history, llms.TextParts(llms.ChatMessageTypeHuman, line))
	compacted, err := s.compactor.MaybeCompact(ctx, s.history)
	if err != nil {
		return false, err
	}
	s.history = compacted

	tokens, err := s.counter.CountTokens(ctx, s.history)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(s.out, "%s%d messages, %d/%d tokens%s\n",
		colorDim, len(s.history), tokens,
		s.compactor.Config().MaxContextTokens, colorReset)
	return false, nil
}

func (s *session) printStats() {
	st := s.compactor.Stats()
	fmt.Fprintf(s.out, "%s%sStats:%s\n", colorBold, colorYellow, colorReset)
	fmt.Fprintf(s.out, "  compactions:      %d\n", st.TotalCompactions)
	fmt.Fprintf(s.out, "  messages removed: %d\n", st.TotalMessagesRemoved)
	fmt.Fprintf(s.out, "  tokens removed:   %d\n", st.TotalTokensRemoved)
	fmt.Fprintf(s.out, "  last compaction:  %d -> %d tokens\n",
		st.LastTokensBefore, st.LastTokensAfter)
	fmt.Fprintf(s.out, "  time spent:       %s\n", st.TotalDuration)
	fmt.Fprintf(s.out, "  threshold/target: %d/%d of %d\n",
		st.TriggerThreshold, st.TargetTokens, st.MaxContextTokens)
}

func (s *session) printHistory(ctx context.Context) error {
	counts, err := ctxcompact.PerMessageTokens(ctx, s.counter, s.history)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s%sHistory:%s\n", colorBold, colorYellow, colorReset)
	for i, m := range s.history {
		color := colorWhite
		if summarizers.IsSummary(m) {
			color = colorCyan
		}
		fmt.Fprintf(s.out, "  %s%3d%s %s[%d]%s %s%s%s\n",
			colorDim, i, colorReset,
			colorDim, counts[i], colorReset,
			color, summarizers.RoleText(m), colorReset)
	}
	return nil
}
