package ctxcompact

import "time"

// TimeProvider supplies the clock the compactor uses to measure how long
// compactions take. Inject a MockTimeProvider in tests to make
// CompactionStats.TotalDuration deterministic.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time
}

// DefaultTimeProvider is the standard TimeProvider using the system clock.
type DefaultTimeProvider struct{}

// NewDefaultTimeProvider creates a new DefaultTimeProvider.
func NewDefaultTimeProvider() *DefaultTimeProvider {
	return &DefaultTimeProvider{}
}

// Now returns the current system time.
func (p *DefaultTimeProvider) Now() time.Time {
	return time.Now()
}

// MockTimeProvider is a TimeProvider that returns a fixed time, optionally
// advancing by a fixed step on every call.
// Useful for testing time-dependent functionality.
type MockTimeProvider struct {
	fixedTime time.Time
	step      time.Duration
}

// NewMockTimeProvider creates a MockTimeProvider with the given fixed time.
func NewMockTimeProvider(t time.Time) *MockTimeProvider {
	return &MockTimeProvider{fixedTime: t}
}

// WithStep makes every Now call advance the clock by step after
// returning. Two consecutive calls are therefore exactly step apart.
func (m *MockTimeProvider) WithStep(step time.Duration) *MockTimeProvider {
	m.step = step
	return m
}

// SetTime updates the time returned by the next Now call.
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.fixedTime = t
}

// Now returns the current mock time, then advances it by the step.
func (m *MockTimeProvider) Now() time.Time {
	now := m.fixedTime
	m.fixedTime = m.fixedTime.Add(m.step)
	return now
}

// Compile-time checks.
var (
	_ TimeProvider = (*DefaultTimeProvider)(nil)
	_ TimeProvider = (*MockTimeProvider)(nil)
)
