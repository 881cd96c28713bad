package main

import (
	"testing"
	"time"
)

func TestClockFirstAdvanceIsZero(t *testing.T) {
	c := NewClock(0)
	if dt := c.Advance(time.Now()); dt != 0 {
		t.Errorf("expected 0 on first advance, got %f", dt)
	}
}

func TestClockClampsLargeGap(t *testing.T) {
	c := NewClock(0)
	start := time.Unix(1000, 0)
	c.Advance(start)
	dt := c.Advance(start.Add(2 * time.Second))
	if dt != MaxFrameDT {
		t.Errorf("expected %f, got %f", MaxFrameDT, dt)
	}
}

func TestClockNormalFrame(t *testing.T) {
	c := NewClock(0)
	start := time.Unix(1000, 0)
	c.Advance(start)
	dt := c.Advance(start.Add(16 * time.Millisecond))
	if dt < 0.0159 || dt > 0.0161 {
		t.Errorf("expected ~0.016, got %f", dt)
	}
}

func TestClockBackwardsIsZero(t *testing.T) {
	c := NewClock(0)
	start := time.Unix(1000, 0)
	c.Advance(start)
	if dt := c.Advance(start.Add(-time.Second)); dt != 0 {
		t.Errorf("expected 0 for backwards time, got %f", dt)
	}
}

func TestClockPause(t *testing.T) {
	c := NewClock(0)
	start := time.Unix(1000, 0)
	c.Advance(start)
	c.SetPaused(true)
	if dt := c.Advance(start.Add(10 * time.Millisecond)); dt != 0 {
		t.Errorf("expected 0 while paused, got %f", dt)
	}
	c.SetPaused(false)
	if dt := c.Advance(start.Add(5 * time.Second)); dt != 0 {
		t.Errorf("expected 0 on first advance after resume, got %f", dt)
	}
	if dt := c.Advance(start.Add(5*time.Second + 20*time.Millisecond)); dt < 0.019 || dt > 0.021 {
		t.Errorf("expected ~0.02 after resume, got %f", dt)
	}
}
