// Package clock provides the wraparound-tolerant millisecond counter shared by
// the coordinator and the control loop.
package clock

import (
	"sync"
	"time"
)

// Millis is a free-running unsigned millisecond counter. It wraps after
// roughly 49.7 days; intervals are always computed with Since.
type Millis uint32

// Since returns the number of milliseconds elapsed from earlier to m.
// Unsigned subtraction keeps the result correct across a single wraparound.
func (m Millis) Since(earlier Millis) uint32 {
	return uint32(m - earlier)
}

// Elapsed reports whether at least timeout milliseconds have passed since earlier.
func (m Millis) Elapsed(earlier Millis, timeout uint32) bool {
	return m.Since(earlier) >= timeout
}

// Stamp is a Millis value that may be absent.
type Stamp struct {
	At  Millis
	Set bool
}

// At returns a set Stamp for m.
func At(m Millis) Stamp {
	return Stamp{At: m, Set: true}
}

// Clock is the source of the current counter value.
type Clock interface {
	Now() Millis
}

// Monotonic derives the counter from Go's monotonic clock, starting at zero
// when it is created.
type Monotonic struct {
	start time.Time
}

// NewMonotonic creates a Monotonic clock anchored at the current instant.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// Now returns the milliseconds since the clock was created, truncated to 32 bits.
func (c *Monotonic) Now() Millis {
	return Millis(uint64(time.Since(c.start).Milliseconds()))
}

// Fake is a manually driven clock for tests.
type Fake struct {
	mu  sync.Mutex
	now Millis
}

// NewFake creates a Fake clock reading start.
func NewFake(start Millis) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake time.
func (f *Fake) Now() Millis {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to m.
func (f *Fake) Set(m Millis) {
	f.mu.Lock()
	f.now = m
	f.mu.Unlock()
}

// Advance moves the clock forward by ms, wrapping like the hardware counter.
func (f *Fake) Advance(ms uint32) {
	f.mu.Lock()
	f.now += Millis(ms)
	f.mu.Unlock()
}
