package scheduler

import (
	"sync"
	"time"
)

// Timer is a pending delayed call
type Timer interface {
	// Stop cancels the call; it reports false if the call already ran or was stopped
	Stop() bool
}

// Clock schedules delayed calls. Production code uses System; tests use ManualClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// System is the wall clock
var System Clock = systemClock{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Group tracks timers created through it so an owner can stop them all at once
type Group struct {
	clock  Clock
	mu     sync.Mutex
	timers map[int]Timer
	next   int
	closed bool
}

// NewGroup creates a timer group on the given clock
func NewGroup(clock Clock) *Group {
	if clock == nil {
		clock = System
	}
	return &Group{clock: clock, timers: make(map[int]Timer)}
}

// AfterFunc schedules f unless the group was stopped
func (g *Group) AfterFunc(d time.Duration, f func()) Timer {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return stoppedTimer{}
	}

	id := g.next
	g.next++
	t := g.clock.AfterFunc(d, func() {
		g.mu.Lock()
		_, live := g.timers[id]
		delete(g.timers, id)
		g.mu.Unlock()
		if live {
			f()
		}
	})
	g.timers[id] = t
	return &groupTimer{group: g, id: id, inner: t}
}

// StopAll cancels every pending timer and rejects new ones
func (g *Group) StopAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	for id, t := range g.timers {
		t.Stop()
		delete(g.timers, id)
	}
}

// Pending reports how many timers are still scheduled
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.timers)
}

type groupTimer struct {
	group *Group
	id    int
	inner Timer
}

func (t *groupTimer) Stop() bool {
	t.group.mu.Lock()
	_, live := t.group.timers[t.id]
	delete(t.group.timers, t.id)
	t.group.mu.Unlock()
	t.inner.Stop()
	return live
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }
