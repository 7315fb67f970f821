package testutil

import (
	"sync"
	"time"
)

// FakeClock is a controllable clock. With a non-zero step every Now call
// advances the clock after reading it, so consecutive readings differ by
// exactly step.
type FakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewFakeClock returns a clock frozen at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// NewSteppingClock returns a clock that moves forward by step on each read.
func NewSteppingClock(start time.Time, step time.Duration) *FakeClock {
	return &FakeClock{now: start, step: step}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Advance moves the fake time forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Epoch is a fixed instant used by deterministic tests.
var Epoch = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
