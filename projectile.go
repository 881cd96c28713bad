package main

import "math"

const (
	BulletMargin      = 50.0 // player bullets live this far outside the arena
	EnemyBulletMargin = 80.0
	HomingTurnRate    = 6.0 // radians/s
)

// Bullet is a player or enemy projectile
type Bullet struct {
	X, Y   float64
	VX, VY float64 // units/s
	Radius float64
	Damage float64
	Pierce int // additional enemies this bullet may hit
	Color  string
	Alive  bool
	Target *Enemy // homing target, nil for straight shots
	hits   []uint32
}

// Update moves the bullet and kills it once it leaves the arena plus margin
func (b *Bullet) Update(dt, worldW, worldH, margin float64) {
	if !b.Alive {
		return
	}
	if b.Target != nil {
		b.steer(dt)
	}
	b.X += b.VX * dt
	b.Y += b.VY * dt
	if b.X < -margin || b.X > worldW+margin || b.Y < -margin || b.Y > worldH+margin {
		b.Alive = false
	}
}

// steer turns the velocity toward the target at a bounded rate
func (b *Bullet) steer(dt float64) {
	if !b.Target.Alive {
		b.Target = nil
		return
	}
	speed := math.Hypot(b.VX, b.VY)
	cur := math.Atan2(b.VY, b.VX)
	desired := math.Atan2(b.Target.Y-b.Y, b.Target.X-b.X)
	diff := NormalizeAngle(desired - cur)
	maxTurn := HomingTurnRate * dt
	if diff > maxTurn {
		diff = maxTurn
	} else if diff < -maxTurn {
		diff = -maxTurn
	}
	cur += diff
	b.VX = math.Cos(cur) * speed
	b.VY = math.Sin(cur) * speed
}

// hasHit reports whether the bullet already damaged the enemy
func (b *Bullet) hasHit(id uint32) bool {
	for _, h := range b.hits {
		if h == id {
			return true
		}
	}
	return false
}

// registerHit consumes one pierce for a hit on enemy id. A bullet with no
// pierce left dies immediately.
func (b *Bullet) registerHit(id uint32) {
	b.hits = append(b.hits, id)
	if b.Pierce > 0 {
		b.Pierce--
		return
	}
	b.Alive = false
}

// ToState converts to snapshot state
func (b *Bullet) ToState() BulletState {
	return BulletState{
		X: round1(b.X),
		Y: round1(b.Y),
		R: b.Radius,
		C: b.Color,
	}
}
