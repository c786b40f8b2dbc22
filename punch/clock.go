package punch

import (
	"sync"
	"time"
)

// Clock supplies the current instant and the zone that defines calendar days.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// SystemClock reads the wall clock in a fixed zone.
type SystemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return &SystemClock{loc: loc}
}

func (c *SystemClock) Now() time.Time { return time.Now().In(c.loc) }

func (c *SystemClock) Location() *time.Location { return c.loc }

// FixedClock returns a settable instant. Used by tests and replays.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Location() *time.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Location()
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Today returns the current calendar day in the clock's zone.
func Today(c Clock) Date {
	return DateOf(c.Now().In(c.Location()))
}
