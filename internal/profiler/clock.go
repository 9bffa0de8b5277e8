package profiler

import "time"

// Clock abstracts time for testability. Production code uses RealClock;
// tests inject a FakeClock.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is a manually advanced clock.
type FakeClock struct {
	now time.Time
}

// NewFakeClock returns a FakeClock set to start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time { return c.now }

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
