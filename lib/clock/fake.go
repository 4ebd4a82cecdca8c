// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// FakeClock is a Clock whose time only moves when Advance is called.
// Timers and tickers created from it fire synchronously during
// Advance, in target-time order, so tests observe a deterministic
// sequence of events.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
}

// fakeWaiter is a pending After channel or ticker. A zero interval
// marks a one-shot waiter that is removed after firing.
type fakeWaiter struct {
	target   time.Time
	interval time.Duration
	ch       chan time.Time
	stopped  bool
}

// Fake returns a FakeClock frozen at start.
func Fake(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After returns a channel that fires when the fake time has advanced
// by at least d. If d <= 0 the channel fires immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, &fakeWaiter{
		target: c.now.Add(d),
		ch:     ch,
	})
	return ch
}

// NewTicker returns a ticker driven by Advance. Panics if d <= 0.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	w := &fakeWaiter{
		target:   c.now.Add(d),
		interval: d,
		ch:       make(chan time.Time, 1),
	}
	c.waiters = append(c.waiters, w)

	return &Ticker{
		C: w.ch,
		stopFunc: func() {
			c.mu.Lock()
			w.stopped = true
			c.mu.Unlock()
		},
	}
}

// Advance moves the fake time forward by d, firing every waiter whose
// target falls within the window, in target-time order. Sends never
// block: like time.Ticker, a tick is dropped when the previous one has
// not been consumed.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	end := c.now.Add(d)
	for {
		next := c.earliestLocked(end)
		if next == nil {
			break
		}
		c.now = next.target

		select {
		case next.ch <- c.now:
		default:
		}

		if next.interval > 0 {
			next.target = next.target.Add(next.interval)
		} else {
			c.removeLocked(next)
		}
	}
	c.now = end
}

// earliestLocked returns the unfired waiter with the earliest target
// at or before limit, or nil. Stopped waiters are pruned as a side
// effect. Must be called with c.mu held.
func (c *FakeClock) earliestLocked(limit time.Time) *fakeWaiter {
	var earliest *fakeWaiter
	live := c.waiters[:0]
	for _, w := range c.waiters {
		if w.stopped {
			continue
		}
		live = append(live, w)
		if w.target.After(limit) {
			continue
		}
		if earliest == nil || w.target.Before(earliest.target) {
			earliest = w
		}
	}
	c.waiters = live
	return earliest
}

// removeLocked drops a waiter from the list. Must be called with c.mu
// held.
func (c *FakeClock) removeLocked(target *fakeWaiter) {
	for i, w := range c.waiters {
		if w == target {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}
