package render

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Travid/littleAI/internal/face"
	"github.com/Travid/littleAI/internal/metrics"
)

// Sink receives each resolved frame. It must not block; slow consumers are
// the broadcaster's problem, not the loop's.
type Sink func(face.Frame)

// Loop drives the face store on a fixed period.
type Loop struct {
	store       *face.Store
	clock       clockwork.Clock
	faceClock   *face.Clock
	geo         face.Geometry
	period      time.Duration
	lockTimeout time.Duration
	sink        Sink
}

// NewLoop creates a render loop. period is the tick interval; lockTimeout is
// the render-path lock bound (much shorter than the command path's, because
// smoothness matters more than single-frame consistency).
func NewLoop(store *face.Store, clock clockwork.Clock, faceClock *face.Clock, geo face.Geometry, period, lockTimeout time.Duration, sink Sink) *Loop {
	return &Loop{
		store:       store,
		clock:       clock,
		faceClock:   faceClock,
		geo:         geo,
		period:      period,
		lockTimeout: lockTimeout,
		sink:        sink,
	}
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := l.clock.NewTicker(l.period)
	defer ticker.Stop()

	slog.Info("render loop started", "period", l.period, "lock_timeout", l.lockTimeout)

	for {
		select {
		case <-ctx.Done():
			slog.Info("render loop stopped")
			return
		case <-ticker.Chan():
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	frame, ok := l.store.Tick(l.lockTimeout, l.faceClock.NowMs(), l.geo)
	if !ok {
		metrics.RenderTicksSkipped.Inc()
		return
	}
	metrics.RenderTicks.Inc()
	if l.sink != nil {
		l.sink(frame)
	}
}
