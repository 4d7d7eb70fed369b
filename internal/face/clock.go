package face

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock supplies the engine's monotonic millisecond timestamps. Time is
// measured from an epoch captured at construction, never wall-clock, so
// values are local to the process and not comparable across restarts.
type Clock struct {
	clock clockwork.Clock
	epoch time.Time
}

// NewClock captures the current instant as millisecond zero.
func NewClock(clock clockwork.Clock) *Clock {
	return &Clock{clock: clock, epoch: clock.Now()}
}

// NowMs returns milliseconds elapsed since the clock was constructed.
func (c *Clock) NowMs() int64 {
	return c.clock.Since(c.epoch).Milliseconds()
}
