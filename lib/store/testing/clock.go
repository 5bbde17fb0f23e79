package testing

import (
	"sync"
	"time"
)

// FakeClock is a manually advanced time source for store tests. The zero
// of the test timeline is an arbitrary fixed epoch offset so that stored
// timestamps are always positive.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock starting at t=0 of the test timeline.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

// Now returns the current fake time. Pass the method value as a store's
// Clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
