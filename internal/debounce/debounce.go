// Package debounce coalesces bursts of events into one delayed task.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the settle time used for search-as-you-type.
const DefaultDelay = 300 * time.Millisecond

// Register holds at most one pending task. Scheduling a task replaces the
// pending one before its timer fires.
type Register struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64
}

// Ticket identifies one scheduled task.
type Ticket struct {
	r   *Register
	seq uint64
}

// Current reports whether no task has been scheduled or cancelled since
// this one. A running task checks it before publishing results.
func (t Ticket) Current() bool {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	return t.r.seq == t.seq
}

func New(delay time.Duration) *Register {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Register{delay: delay}
}

// Schedule arranges for fn to run after the delay unless another task is
// scheduled or Cancel is called first.
func (r *Register) Schedule(fn func(Ticket)) Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.seq++
	t := Ticket{r: r, seq: r.seq}
	r.timer = time.AfterFunc(r.delay, func() {
		r.mu.Lock()
		if r.seq != t.seq {
			r.mu.Unlock()
			return
		}
		r.timer = nil
		r.mu.Unlock()
		fn(t)
	})
	return t
}

// Cancel drops the pending task, if any.
func (r *Register) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	r.seq++
}

// Pending reports whether a task is waiting for its timer.
func (r *Register) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer != nil
}

func (r *Register) stopLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Group keeps one Register per key, e.g. per input field.
type Group struct {
	mu    sync.Mutex
	delay time.Duration
	regs  map[string]*Register
}

func NewGroup(delay time.Duration) *Group {
	return &Group{delay: delay, regs: make(map[string]*Register)}
}

// Schedule replaces the pending task for key.
func (g *Group) Schedule(key string, fn func(Ticket)) Ticket {
	return g.register(key).Schedule(fn)
}

// Stop cancels every pending task.
func (g *Group) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.regs {
		r.Cancel()
	}
}

func (g *Group) register(key string) *Register {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.regs[key]
	if !ok {
		r = New(g.delay)
		g.regs[key] = r
	}
	return r
}
