package ball

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic time source measured from the start of the match.
type Clock interface {
	Now() time.Duration
}

// ManualClock only moves when told to. The world advances one by a fixed
// step per tick; tests set it directly.
type ManualClock struct {
	now atomic.Int64
}

func (c *ManualClock) Now() time.Duration { return time.Duration(c.now.Load()) }

func (c *ManualClock) Set(t time.Duration) { c.now.Store(int64(t)) }

func (c *ManualClock) Advance(d time.Duration) time.Duration {
	return time.Duration(c.now.Add(int64(d)))
}

// WallClock reads elapsed real time since it was created.
type WallClock struct {
	start time.Time
}

func NewWallClock() *WallClock { return &WallClock{start: time.Now()} }

func (c *WallClock) Now() time.Duration { return time.Since(c.start) }
