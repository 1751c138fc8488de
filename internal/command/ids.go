package command

import (
	"sync"
	"time"
)

// IDSource hands out operation ids.
type IDSource interface {
	Next() int64
}

// ClockIDs issues wall-clock milliseconds, bumped by one when the clock has
// not moved since the last id, so ids strictly increase within a process.
type ClockIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewClockIDs() *ClockIDs {
	return &ClockIDs{now: time.Now}
}

func (c *ClockIDs) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}
