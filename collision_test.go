package main

import (
	"math"
	"testing"
)

func TestCheckCollision(t *testing.T) {
	// Overlapping circles
	if !CheckCollision(0, 0, 10, 15, 0, 10) {
		t.Error("circles should collide (overlapping)")
	}

	// Touching circles do not overlap
	if CheckCollision(0, 0, 10, 20, 0, 10) {
		t.Error("touching circles should not collide")
	}

	// Non-overlapping circles
	if CheckCollision(0, 0, 10, 25, 0, 10) {
		t.Error("circles should not collide")
	}

	// Same position
	if !CheckCollision(5, 5, 1, 5, 5, 1) {
		t.Error("same position should collide")
	}
}

func TestInRadiusIncludesBoundary(t *testing.T) {
	if !InRadius(0, 0, 200, 214, 0, 14) {
		t.Error("boundary contact should count")
	}
	if InRadius(0, 0, 200, 214.5, 0, 14) {
		t.Error("beyond the boundary should not count")
	}
}

func TestPointSegmentDistance(t *testing.T) {
	cases := []struct {
		px, py float64
		want   float64
	}{
		{50, 10, 10},  // beside the segment
		{-30, 40, 50}, // behind the start
		{106, 8, 10},  // past the end
	}
	for _, c := range cases {
		if got := PointSegmentDistance(c.px, c.py, 0, 0, 100, 0); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("(%f,%f): expected %f, got %f", c.px, c.py, c.want, got)
		}
	}
}

func TestFalloff(t *testing.T) {
	if falloff(0, 100, 10) != 1 {
		t.Error("expected full strength at the center")
	}
	if falloff(110, 100, 10) != 0 || falloff(500, 100, 10) != 0 {
		t.Error("expected zero at and beyond the edge")
	}
	if math.Abs(falloff(55, 100, 10)-0.5) > 1e-9 {
		t.Error("expected half strength halfway")
	}
}
