package app_test

import (
	"sync"
	"time"

	"qcm-challenge/internal/app"
)

// manualClock never ticks on its own: tests call Session.Tick and RunPending.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*pendingFunc
}

type pendingFunc struct {
	f       func()
	stopped bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 11, 25, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *manualClock) NewTicker(time.Duration) app.Ticker { return idleTicker{} }

func (c *manualClock) AfterFunc(_ time.Duration, f func()) func() bool {
	p := &pendingFunc{f: f}
	c.mu.Lock()
	c.pending = append(c.pending, p)
	c.mu.Unlock()
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		was := !p.stopped
		p.stopped = true
		return was
	}
}

// RunPending fires every scheduled callback that was not cancelled.
func (c *manualClock) RunPending() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, p := range pending {
		c.mu.Lock()
		run := !p.stopped
		p.stopped = true
		c.mu.Unlock()
		if run {
			p.f()
		}
	}
}

func (c *manualClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, p := range c.pending {
		if !p.stopped {
			n++
		}
	}
	return n
}

type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }
func (idleTicker) Stop()               {}
