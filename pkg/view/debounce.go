package view

import (
	"sync"
	"time"
)

type debounceState int

const (
	stateIdle debounceState = iota
	// statePendingLeading: the leading call fired and the quiet period is running.
	statePendingLeading
	// statePendingTrailing: calls arrived after the leading edge; fn fires when the quiet period ends.
	statePendingTrailing
)

// Debouncer collapses bursts of calls. The first call of a burst runs fn
// immediately and, if more calls follow within wait of each other, fn runs
// once more wait after the last of them.
type Debouncer struct {
	wait time.Duration
	fn   func()

	mu      sync.Mutex
	state   debounceState
	gen     uint64
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a Debouncer running fn.
func NewDebouncer(wait time.Duration, fn func()) *Debouncer {
	return &Debouncer{wait: wait, fn: fn}
}

// Call requests a run of fn.
func (d *Debouncer) Call() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	leading := false
	switch d.state {
	case stateIdle:
		d.state = statePendingLeading
		leading = true
	case statePendingLeading, statePendingTrailing:
		d.state = statePendingTrailing
	}
	d.restartLocked()
	d.mu.Unlock()

	if leading {
		d.fn()
	}
}

// Stop cancels a pending trailing call. Later calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.state = stateIdle
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) restartLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() { d.expire(gen) })
}

func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	trailing := d.state == statePendingTrailing
	d.state = stateIdle
	d.timer = nil
	d.mu.Unlock()

	if trailing {
		d.fn()
	}
}
