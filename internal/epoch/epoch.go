// Package epoch provides the monotonic tick source D*-Lite uses to tell
// stale edge stamps from fresh ones: any monotonically non-decreasing
// integer suffices, drawn here from a wall-clock seconds counter via
// benbjohnson/clock.
package epoch

import "github.com/benbjohnson/clock"

// Source produces the current epoch tick.
type Source struct {
	clk clock.Clock
}

// NewSource returns a Source backed by the real wall clock.
func NewSource() *Source {
	return &Source{clk: clock.New()}
}

// NewSourceWithClock returns a Source backed by an injected clock.Clock,
// letting tests control the tick deterministically with a clock.Mock.
func NewSourceWithClock(clk clock.Clock) *Source {
	return &Source{clk: clk}
}

// Now returns the current epoch tick: whole seconds since the Unix epoch.
// Guaranteed non-decreasing for a real clock.Clock; a clock.Mock only
// advances when told to, which is exactly what deterministic tests need.
func (s *Source) Now() uint64 {
	return uint64(s.clk.Now().Unix())
}
