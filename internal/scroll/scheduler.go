package scroll

import (
	"sync"
	"time"
)

// FrameID identifies a pending frame callback.
type FrameID uint64

// Scheduler runs callbacks on the host's next rendering frame.
// RequestFrame must not invoke fn before returning.
type Scheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// DefaultFrameInterval approximates a 60Hz display.
const DefaultFrameInterval = 16 * time.Millisecond

// TimerScheduler emulates a frame clock with timers, for hosts that have no
// render loop of their own. The zero value uses DefaultFrameInterval.
type TimerScheduler struct {
	Interval time.Duration

	mu     sync.Mutex
	next   FrameID
	timers map[FrameID]*time.Timer
}

func (s *TimerScheduler) RequestFrame(fn func()) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timers == nil {
		s.timers = make(map[FrameID]*time.Timer)
	}
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	s.next++
	id := s.next
	s.timers[id] = time.AfterFunc(interval, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	return id
}

func (s *TimerScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Pending reports how many frames are scheduled and not yet run.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
