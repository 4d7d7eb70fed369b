package render

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Travid/littleAI/internal/face"
)

// frameCollector is a Sink that records delivered frames.
type frameCollector struct {
	mu     sync.Mutex
	frames []face.Frame
}

func (c *frameCollector) sink(f face.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
}

func (c *frameCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *frameCollector) last() face.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames[len(c.frames)-1]
}

func TestLoop_ProducesFrames(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := face.NewStore(clock)
	collector := &frameCollector{}

	loop := NewLoop(store, clock, face.NewClock(clock), face.DefaultGeometry(),
		5*time.Millisecond, 10*time.Millisecond, collector.sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	require.NoError(t, clock.BlockUntilContext(t.Context(), 1))

	for i := 0; i < 3; i++ {
		clock.Advance(5 * time.Millisecond)
		require.Eventually(t, func() bool { return collector.count() >= i+1 },
			time.Second, time.Millisecond)
	}

	// Frames carry the loop clock's monotonic timestamp.
	assert.Equal(t, int64(15), collector.last().TsMs)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on context cancellation")
	}
}

func TestLoop_FrameReflectsState(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := face.NewStore(clock)
	collector := &frameCollector{}

	require.NoError(t, store.Update(time.Second, func(st *face.State) {
		st.Expression = face.ExpressionHappy
		st.SetCaption("hello")
	}))

	loop := NewLoop(store, clock, face.NewClock(clock), face.DefaultGeometry(),
		5*time.Millisecond, 10*time.Millisecond, collector.sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	require.NoError(t, clock.BlockUntilContext(t.Context(), 1))
	clock.Advance(5 * time.Millisecond)
	require.Eventually(t, func() bool { return collector.count() >= 1 },
		time.Second, time.Millisecond)

	frame := collector.last()
	assert.Equal(t, face.MouthModeGlyph, frame.MouthMode)
	assert.Equal(t, ")", frame.MouthLabel)
	assert.Equal(t, "hello", frame.CaptionText)
}

func TestLoop_SkipsTickWhenLockHeld(t *testing.T) {
	clock := clockwork.NewRealClock()
	store := face.NewStore(clock)
	collector := &frameCollector{}

	// Occupy the lock for the duration of the test.
	locked := make(chan struct{})
	releaseCh := make(chan struct{})
	go func() {
		_ = store.Update(time.Second, func(*face.State) {
			close(locked)
			<-releaseCh
		})
	}()
	<-locked
	defer close(releaseCh)

	loop := NewLoop(store, clock, face.NewClock(clock), face.DefaultGeometry(),
		time.Millisecond, time.Millisecond, collector.sink)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	loop.Run(ctx)

	// Every tick hit the held lock and was skipped.
	assert.Zero(t, collector.count())
}
