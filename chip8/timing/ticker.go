package timing

import "time"

// TickerLimiter paces frames off a time.Ticker. Missed ticks are dropped by
// the runtime, so a slow frame is never followed by a burst of catch-up frames.
type TickerLimiter struct {
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(FrameDuration())}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

// Reset restarts the period and discards a tick left over from a pause.
func (t *TickerLimiter) Reset() {
	t.ticker.Reset(FrameDuration())
	select {
	case <-t.ticker.C:
	default:
	}
}

// Stop releases the ticker. The limiter must not be used afterwards.
func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
