package main

import "math"

// CheckCollision reports whether two circles strictly overlap
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	radSum := r1 + r2
	return dx*dx+dy*dy < radSum*radSum
}

// InRadius reports whether a circle of radius r2 at (x2,y2) touches the disc of
// radius r1 around (x1,y1). Touching at the boundary counts.
func InRadius(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	radSum := r1 + r2
	return dx*dx+dy*dy <= radSum*radSum
}

// PointSegmentDistance returns the distance from (px,py) to the segment (x1,y1)-(x2,y2)
func PointSegmentDistance(px, py, x1, y1, x2, y2 float64) float64 {
	vx := x2 - x1
	vy := y2 - y1
	wx := px - x1
	wy := py - y1
	c1 := vx*wx + vy*wy
	if c1 <= 0 {
		return math.Hypot(px-x1, py-y1)
	}
	c2 := vx*vx + vy*vy
	if c2 <= c1 {
		return math.Hypot(px-x2, py-y2)
	}
	t := c1 / c2
	bx := x1 + t*vx
	by := y1 + t*vy
	return math.Hypot(px-bx, py-by)
}

// falloff returns 1 at the center of an area and 0 at its edge (radius+targetRadius)
func falloff(dist, radius, targetRadius float64) float64 {
	reach := radius + targetRadius
	if reach <= 0 {
		return 0
	}
	return Clamp(1-dist/reach, 0, 1)
}
