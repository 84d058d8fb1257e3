package testfixtures

import (
	"sync"
	"time"
)

// Clock is a settable time source. Services take a now func, so tests
// inject NowFunc and steer time explicitly, for example to expire a
// session or push an event past its due instant.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock starts the clock at the given instant, or at ReferenceTime
// when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the clock's current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc adapts the clock for injection into service constructors.
// A nil clock falls back to real time.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to the given instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	c.mu.Unlock()
	return updated
}
