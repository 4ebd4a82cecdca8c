// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time operations so that TTL and eviction
// behavior can be tested deterministically. Production code injects
// Real(); tests inject Fake() and advance time explicitly.
package clock

import "time"

// Clock is the time source injected into components that expire or
// schedule work. Any production code that would call time.Now,
// time.After, or time.NewTicker directly should take a Clock instead.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. Equivalent to time.After.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker delivering ticks on its C channel at
	// the given interval. Panics if d <= 0, matching time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker wraps a periodic timer. Read ticks from C and call Stop when
// done. The C channel has capacity 1: if the consumer falls behind,
// ticks are dropped rather than queued, matching time.Ticker.
type Ticker struct {
	// C delivers ticks.
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. No more ticks arrive on C after Stop
// returns. Stop does not close C.
func (t *Ticker) Stop() { t.stopFunc() }
