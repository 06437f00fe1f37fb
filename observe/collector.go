// Package observe exports compactor activity to
// Prometheus and OpenTelemetry.
//
//   - [Collector]: a prometheus.Collector reading a
//     compactor's stats on every scrape
//   - [TracedStrategy]: wraps a strategy in a span
//   - [TracedCounter]: wraps a token counter in a span
package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rickchristie/ctxcompact"
)

// StatsSource is anything that reports compaction stats.
// *ctxcompact.ContextCompactor[M] satisfies it for any M.
type StatsSource interface {
	Stats() ctxcompact.CompactionStats
}

// Collector exposes a compactor's stats as Prometheus
// metrics, labelled with the compactor's name. Values are
// read from the source at scrape time; Stats is safe to
// call while a compaction is running.
//
// ResetStats on the source makes the counters drop back to
// zero, which Prometheus treats as a counter reset.
//
// Example:
//
//	prometheus.MustRegister(observe.NewCollector("support-bot", compactor))
type Collector struct {
	source StatsSource

	compactions     *prometheus.Desc
	messagesRemoved *prometheus.Desc
	tokensRemoved   *prometheus.Desc
	seconds         *prometheus.Desc
	lastBefore      *prometheus.Desc
	lastAfter       *prometheus.Desc
	threshold       *prometheus.Desc
	maxTokens       *prometheus.Desc
	targetTokens    *prometheus.Desc
}

// NewCollector creates a Collector for source. name is
// attached to every metric as the "compactor" label.
func NewCollector(name string, source StatsSource) *Collector {
	labels := prometheus.Labels{"compactor": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName("ctxcompact", "", metric),
			help, nil, labels,
		)
	}
	return &Collector{
		source: source,

		compactions: desc("compactions_total",
			"Number of compactions that succeeded."),
		messagesRemoved: desc("messages_removed_total",
			"Messages removed by compaction."),
		tokensRemoved: desc("tokens_removed_total",
			"Tokens removed by compaction."),
		seconds: desc("compaction_seconds_total",
			"Time spent compacting and re-measuring."),
		lastBefore: desc("last_tokens_before",
			"History size before the last compaction."),
		lastAfter: desc("last_tokens_after",
			"History size after the last compaction."),
		threshold: desc("trigger_threshold_tokens",
			"History size at which compaction runs."),
		maxTokens: desc("max_context_tokens",
			"Configured context window."),
		targetTokens: desc("target_tokens",
			"Budget a compaction must fit the history under."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.compactions
	ch <- c.messagesRemoved
	ch <- c.tokensRemoved
	ch <- c.seconds
	ch <- c.lastBefore
	ch <- c.lastAfter
	ch <- c.threshold
	ch <- c.maxTokens
	ch <- c.targetTokens
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()

	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}

	counter(c.compactions, float64(s.TotalCompactions))
	counter(c.messagesRemoved, float64(s.TotalMessagesRemoved))
	counter(c.tokensRemoved, float64(s.TotalTokensRemoved))
	counter(c.seconds, s.TotalDuration.Seconds())
	gauge(c.lastBefore, float64(s.LastTokensBefore))
	gauge(c.lastAfter, float64(s.LastTokensAfter))
	gauge(c.threshold, float64(s.TriggerThreshold))
	gauge(c.maxTokens, float64(s.MaxContextTokens))
	gauge(c.targetTokens, float64(s.TargetTokens))
}

// Compile-time checks.
var (
	_ prometheus.Collector = (*Collector)(nil)
	_ StatsSource          = (*ctxcompact.ContextCompactor[string])(nil)
)
