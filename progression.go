package main

import "math"

// XPFirstLevel is the experience needed to leave level 1
const XPFirstLevel = 100

// NextXP returns the threshold after a level-up from prev
func NextXP(prev int) int {
	return int(math.Floor(float64(prev) * 1.2))
}

// levelUp advances the level and opens the upgrade offer. With nothing to
// offer the run keeps going.
func (w *World) levelUp() {
	r := &w.Run
	p := w.Player
	r.Level++
	r.XP = 0
	r.XPNext = NextXP(r.XPNext)
	p.MaxHP += LevelUpMaxHP
	p.HP = math.Min(p.MaxHP, p.HP+LevelUpHeal)
	w.emit(EventLevelUp, p.X, p.Y, float64(r.Level))

	r.Offers = w.pickUpgrades(OfferCount)
	if len(r.Offers) > 0 {
		r.Phase = PhaseAwaitingUpgrade
	}
}

// advanceTimers accumulates run time and fires the boss and heart timers
func (w *World) advanceTimers(dt float64) {
	r := &w.Run
	r.Seconds += dt
	r.BossTimer += dt
	r.HeartTimer += dt
	if r.BossTimer >= BossInterval && !r.BossActive {
		r.BossTimer = 0
		w.spawnBoss()
	}
	if r.HeartTimer >= HeartInterval {
		r.HeartTimer = 0
		w.spawnHeart()
	}
}

// collectPickups moves gems, collects gems and hearts in reach, and levels up.
// Collection stops as soon as an upgrade offer opens.
func (w *World) collectPickups(dt float64) {
	p := w.Player
	reach := p.Radius + PickupReach

	w.pickBuf = w.Grid.QueryRadius(p.X, p.Y, math.Max(p.Magnet, reach), KindGem, w.pickBuf[:0])
	for _, ref := range w.pickBuf {
		g := w.Gems[ref.Idx]
		if !g.Alive {
			continue
		}
		g.Update(dt, p)
		if Distance(p.X, p.Y, g.X, g.Y) >= reach {
			continue
		}
		g.Alive = false
		w.Run.XP += g.Value
		w.emit(EventPickup, g.X, g.Y, float64(g.Value))
		if w.Run.XP >= w.Run.XPNext {
			w.levelUp()
			if w.Run.Phase != PhaseRunning {
				return
			}
		}
	}

	w.pickBuf = w.Grid.QueryRadius(p.X, p.Y, reach+HeartRadius, KindHeart, w.pickBuf[:0])
	for _, ref := range w.pickBuf {
		h := w.Hearts[ref.Idx]
		if !h.Alive || !CheckCollision(p.X, p.Y, reach, h.X, h.Y, HeartRadius) {
			continue
		}
		h.Alive = false
		healed := p.Heal(h.Heal)
		w.emit(EventHeal, h.X, h.Y, healed)
	}
}
