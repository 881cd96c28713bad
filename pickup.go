package main

import "math"

const (
	GemRadius        = 6.0
	GemValue         = 20
	BossKillGemValue = 40
	GemHomingSpeed   = 372.0 // units/s
	PickupReach      = 10.0  // added to the player radius
	HeartRadius      = 10.0
	HeartHeal        = 20.0
	HeartInterval    = 20.0
	MaxHearts        = 3
	HeartMargin      = 50.0
)

// Gem is an experience drop
type Gem struct {
	X, Y  float64
	Value int
	Alive bool
}

// Update drifts the gem toward the player while inside the magnet radius
func (g *Gem) Update(dt float64, p *Player) {
	if !g.Alive {
		return
	}
	nx, ny, dist := unitVector(g.X, g.Y, p.X, p.Y)
	if dist < p.Magnet {
		step := math.Min(GemHomingSpeed*dt, dist)
		g.X += nx * step
		g.Y += ny * step
	}
}

// ToState converts to snapshot state
func (g *Gem) ToState() GemState {
	return GemState{X: round1(g.X), Y: round1(g.Y), V: g.Value}
}

// Heart is a periodic healing drop
type Heart struct {
	X, Y  float64
	Heal  float64
	Alive bool
}

// ToState converts to snapshot state
func (h *Heart) ToState() HeartState {
	return HeartState{X: round1(h.X), Y: round1(h.Y)}
}

// dropGem adds an experience gem. At MaxGems the value is folded into the
// oldest live gem instead.
func (w *World) dropGem(x, y float64, value int) {
	if len(w.Gems) >= w.Cfg.MaxGems {
		for _, g := range w.Gems {
			if g.Alive {
				g.Value += value
				return
			}
		}
	}
	w.Gems = append(w.Gems, &Gem{X: x, Y: y, Value: value, Alive: true})
}

// spawnHeart places a heart at a random arena position away from the edges
func (w *World) spawnHeart() bool {
	n := 0
	for _, h := range w.Hearts {
		if h.Alive {
			n++
		}
	}
	if n >= MaxHearts {
		return false
	}
	w.Hearts = append(w.Hearts, &Heart{
		X:     HeartMargin + w.Rand.Float64()*(w.Cfg.Width-2*HeartMargin),
		Y:     HeartMargin + w.Rand.Float64()*(w.Cfg.Height-2*HeartMargin),
		Heal:  HeartHeal,
		Alive: true,
	})
	return true
}
