package timing

import (
	"fmt"
	"time"
)

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

// LimiterKinds lists the names accepted by NewLimiter.
var LimiterKinds = []string{"none", "adaptive", "ticker"}

// NewLimiter builds a limiter by name.
func NewLimiter(kind string) (Limiter, error) {
	switch kind {
	case "none":
		return NewNoOpLimiter(), nil
	case "adaptive":
		return NewAdaptiveLimiter(), nil
	case "ticker":
		return NewTickerLimiter(), nil
	}
	return nil, fmt.Errorf("unknown limiter %q, expected one of %v", kind, LimiterKinds)
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// TimerFrequency is the rate at which the delay and sound timers count down.
// A frame is one timer period.
const TimerFrequency = 60

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Second / TimerFrequency
}

// CyclesPerSecond returns the instruction rate for a given frame budget.
func CyclesPerSecond(cyclesPerFrame int) int {
	return cyclesPerFrame * TimerFrequency
}
