package face

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Travid/littleAI/internal/domain"
)

// Store owns the shared State. Every read or write goes through a single
// bounded-wait lock; there is no finer-grained locking, so a reader always
// observes either fully-pre-command or fully-post-command values.
//
// Callers pass their own acquisition timeout because the bound encodes a real
// trade-off per role: the command path waits generously (a dropped command is
// user-visible), the render path waits briefly and skips the tick instead.
type Store struct {
	sem   chan struct{}
	clock clockwork.Clock
	state State
}

// NewStore creates a store holding the boot-time rest state.
func NewStore(clock clockwork.Clock) *Store {
	return &Store{
		sem:   make(chan struct{}, 1),
		clock: clock,
		state: NewState(),
	}
}

// acquire takes the lock, waiting at most timeout. The buffered-channel
// semaphore keeps waiting bounded for both roles; Go's runtime services
// channel waiters without starving either side.
func (s *Store) acquire(timeout time.Duration) bool {
	select {
	case s.sem <- struct{}{}:
		return true
	default:
	}

	timer := s.clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s.sem <- struct{}{}:
		return true
	case <-timer.Chan():
		return false
	}
}

func (s *Store) release() { <-s.sem }

// Update runs fn with exclusive access to the state. fn must not block; all
// validation happens before mutation, in the dispatcher. Returns
// domain.ErrFaceBusy if the lock is not acquired within timeout.
func (s *Store) Update(timeout time.Duration, fn func(*State)) error {
	if s == nil {
		return domain.ErrFaceUnavailable
	}
	if !s.acquire(timeout) {
		return domain.ErrFaceBusy
	}
	defer s.release()

	fn(&s.state)
	return nil
}

// Snapshot returns a consistent copy of the state.
func (s *Store) Snapshot(timeout time.Duration) (State, error) {
	if s == nil {
		return State{}, domain.ErrFaceUnavailable
	}
	if !s.acquire(timeout) {
		return State{}, domain.ErrFaceBusy
	}
	defer s.release()

	return s.state, nil
}
