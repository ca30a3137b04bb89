// Package scroll derives navigation state from a page's scroll position:
// whether the header has passed its style-switch threshold, which way the
// page is moving, and which section is currently active.
//
// The host supplies the scroll signal, a way to look up section offsets and
// a frame scheduler, so the tracker runs the same in a browser bridge, a
// test, or a headless renderer.
package scroll

import (
	"slices"
	"sync"
)

const (
	DefaultThreshold = 40
	DefaultLookahead = 100
)

// Section is a named anchor region of a single-page layout.
type Section struct {
	ID   string
	Name string
}

// DefaultSections lists the site's navigation anchors in page order.
var DefaultSections = []Section{
	{ID: "home", Name: "Home"},
	{ID: "services", Name: "Services"},
	{ID: "projects", Name: "Projects"},
	{ID: "about", Name: "About"},
	{ID: "contact", Name: "Contact"},
}

type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

// State is a snapshot delivered to subscribers once per processed frame.
type State struct {
	Offset        int
	PastThreshold bool
	Direction     Direction
	// ActiveSection is empty when no section starts above the lookahead line.
	ActiveSection string
}

// Source is the host's scroll signal.
type Source interface {
	// Offset reports the current distance from the top in pixels.
	Offset() int
	// Listen registers fn for every raw scroll event and returns a function
	// that removes it.
	Listen(fn func()) (remove func())
}

// Locator reports the current top offset of a section, or false when the
// section is not on the page.
type Locator func(id string) (top int, ok bool)

type Config struct {
	Threshold int
	Lookahead int
	Sections  []Section
}

func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		Lookahead: DefaultLookahead,
		Sections:  DefaultSections,
	}
}

type subscriber struct {
	fn func(State)
}

// Tracker turns raw scroll events into at most one State per frame.
type Tracker struct {
	src    Source
	locate Locator
	sched  Scheduler
	cfg    Config

	mu        sync.Mutex
	subs      []*subscriber
	running   bool
	removeFn  func()
	pending   bool
	frame     FrameID
	gen       uint64
	last      State
	delivered bool
}

// New returns a stopped tracker. A nil src means the host has no scroll
// signal, in which case Start does nothing.
func New(src Source, locate Locator, sched Scheduler, cfg Config) *Tracker {
	if locate == nil {
		locate = func(string) (int, bool) { return 0, false }
	}
	return &Tracker{
		src:    src,
		locate: locate,
		sched:  sched,
		cfg:    cfg,
	}
}

// Subscribe registers fn; subscribers are notified in registration order.
func (t *Tracker) Subscribe(fn func(State)) (unsubscribe func()) {
	s := &subscriber{fn: fn}
	t.mu.Lock()
	t.subs = append(t.subs, s)
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if i := slices.Index(t.subs, s); i >= 0 {
			t.subs = slices.Delete(t.subs, i, i+1)
		}
	}
}

// Start delivers the current state synchronously and begins listening.
// Calling Start on a running tracker does nothing.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.running || t.src == nil || t.sched == nil {
		t.mu.Unlock()
		return
	}
	t.running = true
	gen := t.gen
	t.mu.Unlock()

	t.deliver(gen)

	remove := t.src.Listen(t.signal)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.gen != gen {
		// Stopped while we were registering.
		remove()
		return
	}
	t.removeFn = remove
}

// Stop removes the listener and cancels any pending frame. It is safe to
// call on a tracker that was never started. Subscribers that have not yet
// been called for an in-flight frame are skipped, including when Stop is
// called from another goroutine or from inside a subscriber.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.gen++
	remove := t.removeFn
	t.removeFn = nil
	if t.pending {
		t.pending = false
		t.sched.CancelFrame(t.frame)
	}
	t.mu.Unlock()

	if remove != nil {
		remove()
	}
}

// Last returns the most recently delivered state.
func (t *Tracker) Last() (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.delivered
}

// signal handles one raw scroll event. Events arriving while a frame is
// pending are absorbed; the frame reads the offset when it runs.
func (t *Tracker) signal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.pending {
		return
	}
	t.pending = true
	gen := t.gen
	t.frame = t.sched.RequestFrame(func() { t.onFrame(gen) })
}

func (t *Tracker) onFrame(gen uint64) {
	t.mu.Lock()
	if !t.running || t.gen != gen {
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.mu.Unlock()

	t.deliver(gen)
}

func (t *Tracker) deliver(gen uint64) {
	offset := max(t.src.Offset(), 0)
	active := t.activeSection(offset)

	t.mu.Lock()
	if !t.running || t.gen != gen {
		t.mu.Unlock()
		return
	}
	st := State{
		Offset:        offset,
		PastThreshold: offset > t.cfg.Threshold,
		Direction:     DirectionNone,
		ActiveSection: active,
	}
	if t.delivered {
		switch {
		case offset > t.last.Offset:
			st.Direction = DirectionDown
		case offset < t.last.Offset:
			st.Direction = DirectionUp
		}
	}
	t.last = st
	t.delivered = true
	subs := slices.Clone(t.subs)
	t.mu.Unlock()

	for _, s := range subs {
		if !t.current(gen) {
			return
		}
		s.fn(st)
	}
}

// current reports whether the tracker is still running in generation gen.
func (t *Tracker) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running && t.gen == gen
}

// activeSection walks sections bottom-up and returns the first one whose top
// is at or above offset+lookahead. Offsets are queried fresh every frame
// because the page may reflow between frames.
func (t *Tracker) activeSection(offset int) string {
	line := offset + t.cfg.Lookahead
	for i := len(t.cfg.Sections) - 1; i >= 0; i-- {
		id := t.cfg.Sections[i].ID
		top, ok := t.locate(id)
		if ok && top <= line {
			return id
		}
	}
	return ""
}
