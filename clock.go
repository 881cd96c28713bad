package main

import "time"

// MaxFrameDT bounds a single simulation step in seconds
const MaxFrameDT = 0.033

// Clock turns wall-clock readings into clamped frame deltas. It never
// sub-steps: a long gap yields one step of MaxDT.
type Clock struct {
	MaxDT   float64
	last    time.Time
	started bool
	paused  bool
}

// NewClock creates a clock with the given clamp (MaxFrameDT when <= 0)
func NewClock(maxDT float64) *Clock {
	if maxDT <= 0 {
		maxDT = MaxFrameDT
	}
	return &Clock{MaxDT: maxDT}
}

// Advance returns the clamped delta since the previous call. The first call
// after creation or resume returns 0, and a paused clock always returns 0.
func (c *Clock) Advance(now time.Time) float64 {
	if c.paused {
		return 0
	}
	if !c.started {
		c.started = true
		c.last = now
		return 0
	}
	dt := now.Sub(c.last).Seconds()
	c.last = now
	return ClampDT(dt, c.MaxDT)
}

// SetPaused freezes or resumes the clock
func (c *Clock) SetPaused(paused bool) {
	if c.paused == paused {
		return
	}
	c.paused = paused
	if !paused {
		c.started = false
	}
}

// Paused reports whether the clock is frozen
func (c *Clock) Paused() bool {
	return c.paused
}

// ClampDT limits dt to [0, max]
func ClampDT(dt, max float64) float64 {
	if dt < 0 {
		return 0
	}
	if dt > max {
		return max
	}
	return dt
}
