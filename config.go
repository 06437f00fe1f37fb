package ctxcompact

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rickchristie/ctxcompact/schema"
	"gopkg.in/yaml.v3"
)

// StrategyName identifies a built-in compaction strategy in config files.
type StrategyName string

const (
	// StrategyKeepRecent keeps the last KeepCount messages.
	StrategyKeepRecent StrategyName = "keep_recent"

	// StrategyKeepFirstLast keeps the first KeepFirst and the last
	// KeepLast messages.
	StrategyKeepFirstLast StrategyName = "keep_first_last"

	// StrategySlidingWindow keeps the longest recent suffix that fits
	// the target budget.
	StrategySlidingWindow StrategyName = "sliding_window"

	// StrategyDropOldest drops the oldest message until the history
	// fits the target budget.
	StrategyDropOldest StrategyName = "drop_oldest"

	// StrategySummarizeMiddle keeps head and tail and replaces the
	// middle with one summary message.
	StrategySummarizeMiddle StrategyName = "summarize_middle"
)

// Default configuration values.
const (
	DefaultMaxContextTokens = 128_000
	DefaultTriggerAtPercent = 0.8
	DefaultTargetPercent    = 1.0
	DefaultStrategy         = StrategySlidingWindow
)

// thresholdEpsilon absorbs float error in max*percent so that, for
// example, 1000 * 0.8 yields exactly 800.
const thresholdEpsilon = 1e-9

// Config holds the compactor's configuration. It is validated once, at
// construction; a ContextCompactor never changes it afterwards.
type Config struct {
	// MaxContextTokens is the model's context window. Must be positive.
	MaxContextTokens int `yaml:"max_context_tokens"`

	// TriggerAtPercent is the fraction of MaxContextTokens at which
	// compaction runs. Must be in (0, 1].
	TriggerAtPercent float64 `yaml:"trigger_at_percent"`

	// TargetPercent is the fraction of MaxContextTokens the strategy is
	// asked to fit under. Must be in [0, 1]; 0 means the full window.
	TargetPercent float64 `yaml:"target_percent"`

	// Verbose logs every call and every compaction at info level.
	Verbose bool `yaml:"verbose"`

	// Strategy selects a built-in strategy for compaction.FromConfig.
	// It is ignored by New, which takes the strategy as an argument,
	// but it is validated when set.
	Strategy StrategyConfig `yaml:"strategy"`
}

// StrategyConfig selects and parameterizes a built-in strategy.
type StrategyConfig struct {
	// Name is the strategy to build.
	Name StrategyName `yaml:"name"`

	// KeepCount is used by keep_recent. Must be positive.
	KeepCount int `yaml:"keep_count"`

	// KeepFirst and KeepLast are used by keep_first_last and
	// summarize_middle. Must be non-negative.
	KeepFirst int `yaml:"keep_first"`
	KeepLast  int `yaml:"keep_last"`

	// Recount makes drop_oldest re-measure the whole remaining history
	// after every removal instead of subtracting per-message costs.
	Recount bool `yaml:"recount"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxContextTokens: DefaultMaxContextTokens,
		TriggerAtPercent: DefaultTriggerAtPercent,
		TargetPercent:    DefaultTargetPercent,
		Strategy:         StrategyConfig{Name: DefaultStrategy},
	}
}

// Validate returns an error wrapping ErrInvalidConfig if c is invalid.
func (c Config) Validate() error {
	if c.MaxContextTokens <= 0 {
		return fmt.Errorf("%w: max_context_tokens must be positive, got %d",
			ErrInvalidConfig, c.MaxContextTokens)
	}

	// Written as a negation so NaN is rejected too.
	if !(c.TriggerAtPercent > 0 && c.TriggerAtPercent <= 1) {
		return fmt.Errorf("%w: trigger_at_percent must be in (0, 1], got %v",
			ErrInvalidConfig, c.TriggerAtPercent)
	}

	if !(c.TargetPercent >= 0 && c.TargetPercent <= 1) {
		return fmt.Errorf("%w: target_percent must be in [0, 1], got %v",
			ErrInvalidConfig, c.TargetPercent)
	}

	if c.Strategy.Name != "" {
		if err := c.Strategy.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validate returns an error wrapping ErrInvalidConfig if s names an
// unknown strategy or carries parameters that strategy cannot use.
func (s StrategyConfig) Validate() error {
	if s.KeepCount < 0 || s.KeepFirst < 0 || s.KeepLast < 0 {
		return fmt.Errorf("%w: keep_count, keep_first and keep_last must be non-negative",
			ErrInvalidConfig)
	}

	switch s.Name {
	case StrategyKeepRecent:
		if s.KeepCount < 1 {
			return fmt.Errorf("%w: keep_recent requires keep_count >= 1, got %d",
				ErrInvalidConfig, s.KeepCount)
		}
	case StrategyKeepFirstLast, StrategySummarizeMiddle,
		StrategySlidingWindow, StrategyDropOldest:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s.Name)
	}

	return nil
}

// TriggerThreshold returns the token count at which compaction runs:
// MaxContextTokens * TriggerAtPercent rounded up, so that comparing an
// integer usage against it is exact.
func (c Config) TriggerThreshold() int {
	raw := float64(c.MaxContextTokens) * c.TriggerAtPercent
	return int(math.Ceil(raw - thresholdEpsilon))
}

// TargetTokens returns the budget handed to the strategy:
// MaxContextTokens * TargetPercent rounded down, never less than 1 and
// never more than MaxContextTokens.
func (c Config) TargetTokens() int {
	percent := c.TargetPercent
	if percent == 0 {
		percent = DefaultTargetPercent
	}
	target := int(math.Floor(float64(c.MaxContextTokens)*percent + thresholdEpsilon))
	return min(max(target, 1), c.MaxContextTokens)
}

// configSchema validates raw config documents before they are decoded,
// so typos and out-of-range values are reported with their path.
var configSchema = schema.MustCompile(schema.Closed(schema.Object(
	map[string]*schema.Property{
		"max_context_tokens": schema.Integer(
			"Model context window in tokens",
		).Min(1),
		"trigger_at_percent": schema.Number(
			"Fraction of the window at which compaction runs",
		).ExclusiveMin(0).Max(1),
		"target_percent": schema.Number(
			"Fraction of the window the strategy must fit under",
		).Min(0).Max(1),
		"verbose": schema.Boolean("Log every compaction decision"),
		"strategy": schema.ObjectProperty(
			"Built-in strategy selection",
			map[string]*schema.Property{
				"name": schema.String("Strategy name").Enum(
					string(StrategyKeepRecent),
					string(StrategyKeepFirstLast),
					string(StrategySlidingWindow),
					string(StrategyDropOldest),
					string(StrategySummarizeMiddle),
				),
				"keep_count": schema.Integer("Messages kept by keep_recent").Min(0),
				"keep_first": schema.Integer("Leading messages kept").Min(0),
				"keep_last":  schema.Integer("Trailing messages kept").Min(0),
				"recount":    schema.Boolean("drop_oldest re-measures after each removal"),
			},
			"name",
		).Closed(),
	},
)))

// LoadConfig reads a YAML config document.
//
// The document is validated against the config schema, keys that are
// absent take their DefaultConfig values, and the result is checked with
// Validate. Any problem is reported as ErrInvalidConfig.
//
// Example document:
//
//	max_context_tokens: 200000
//	trigger_at_percent: 0.85
//	strategy:
//	  name: summarize_middle
//	  keep_first: 2
//	  keep_last: 6
func LoadConfig(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("%w: parse yaml: %v", ErrInvalidConfig, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := configSchema.Validate(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: decode yaml: %v", ErrInvalidConfig, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML config document from path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}
