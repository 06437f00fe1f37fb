package observe

import (
	"context"

	"github.com/rickchristie/ctxcompact"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used when no
// tracer is supplied.
const TracerName = "github.com/rickchristie/ctxcompact/observe"

// Span attributes.
var (
	AttrStrategy       = attribute.Key("ctxcompact.strategy")
	AttrMessagesBefore = attribute.Key("ctxcompact.messages_before")
	AttrMessagesAfter  = attribute.Key("ctxcompact.messages_after")
	AttrTargetTokens   = attribute.Key("ctxcompact.target_tokens")
	AttrMessages       = attribute.Key("ctxcompact.messages")
	AttrTokens         = attribute.Key("ctxcompact.tokens")
)

func tracerOrGlobal(tracer trace.Tracer) trace.Tracer {
	if tracer == nil {
		return otel.Tracer(TracerName)
	}
	return tracer
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TracedStrategy runs a strategy inside a
// "ctxcompact.compact" span. The error, if any, is recorded
// on the span and returned unchanged.
//
// Example:
//
//	strategy := observe.NewTracedStrategy(
//	    "summarize_middle", summarizeMiddle, nil,
//	)
type TracedStrategy[M any] struct {
	name   string
	next   ctxcompact.CompactionStrategy[M]
	tracer trace.Tracer
}

// NewTracedStrategy wraps next. A nil tracer uses the
// global tracer provider.
func NewTracedStrategy[M any](
	name string,
	next ctxcompact.CompactionStrategy[M],
	tracer trace.Tracer,
) *TracedStrategy[M] {
	return &TracedStrategy[M]{
		name:   name,
		next:   next,
		tracer: tracerOrGlobal(tracer),
	}
}

// Compact implements ctxcompact.CompactionStrategy.
func (s *TracedStrategy[M]) Compact(
	ctx context.Context,
	messages []M,
	targetTokens int,
	counter ctxcompact.TokenCounter[M],
) ([]M, error) {
	ctx, span := s.tracer.Start(ctx, "ctxcompact.compact",
		trace.WithAttributes(
			AttrStrategy.String(s.name),
			AttrMessagesBefore.Int(len(messages)),
			AttrTargetTokens.Int(targetTokens),
		),
	)
	defer span.End()

	result, err := s.next.Compact(ctx, messages, targetTokens, counter)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	span.SetAttributes(AttrMessagesAfter.Int(len(result)))
	return result, nil
}

// TracedCounter runs a token counter inside a
// "ctxcompact.count_tokens" span. Useful for remote
// counters, whose latency is otherwise invisible.
//
// CountPerMessage is forwarded when the wrapped counter
// supports it, so wrapping does not change how the
// windowing strategies measure.
type TracedCounter[M any] struct {
	next   ctxcompact.TokenCounter[M]
	tracer trace.Tracer
}

// NewTracedCounter wraps next. A nil tracer uses the
// global tracer provider.
func NewTracedCounter[M any](
	next ctxcompact.TokenCounter[M],
	tracer trace.Tracer,
) *TracedCounter[M] {
	return &TracedCounter[M]{next: next, tracer: tracerOrGlobal(tracer)}
}

// CountTokens implements ctxcompact.TokenCounter.
func (c *TracedCounter[M]) CountTokens(ctx context.Context, messages []M) (int, error) {
	ctx, span := c.tracer.Start(ctx, "ctxcompact.count_tokens",
		trace.WithAttributes(AttrMessages.Int(len(messages))),
	)
	defer span.End()

	n, err := c.next.CountTokens(ctx, messages)
	if err != nil {
		fail(span, err)
		return 0, err
	}
	span.SetAttributes(AttrTokens.Int(n))
	return n, nil
}

// CountPerMessage implements ctxcompact.PerMessageCounter.
// If the wrapped counter has no per-message support each
// message is measured with CountTokens.
func (c *TracedCounter[M]) CountPerMessage(ctx context.Context, messages []M) ([]int, error) {
	ctx, span := c.tracer.Start(ctx, "ctxcompact.count_per_message",
		trace.WithAttributes(AttrMessages.Int(len(messages))),
	)
	defer span.End()

	counts, err := ctxcompact.PerMessageTokens(ctx, c.next, messages)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	return counts, nil
}

// Compile-time checks.
var (
	_ ctxcompact.CompactionStrategy[string] = (*TracedStrategy[string])(nil)
	_ ctxcompact.PerMessageCounter[string]  = (*TracedCounter[string])(nil)
)
