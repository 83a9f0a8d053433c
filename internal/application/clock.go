package application

import (
	"sync"
	"time"
)

// Clock hands out strictly increasing UTC timestamps at microsecond precision, so
// events recorded in one request sort in the order they were written.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock returns a Clock backed by time.Now.
func NewClock() *Clock {
	return NewClockAt(time.Now)
}

// NewClockAt returns a Clock backed by now.
func NewClockAt(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current time, or one microsecond past the previous reading if the
// wall clock has not advanced.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
