package main

// damageEnemy applies damage and runs kill processing exactly once when the
// enemy dies. Returns true if this call killed it.
func (w *World) damageEnemy(e *Enemy, dmg float64, color string) bool {
	if !e.Alive {
		return false
	}
	if color == "" {
		color = GetArchetype(e.Type).Color
	}
	w.burst(e.X, e.Y, color)
	if !e.TakeDamage(dmg) {
		w.emit(EventHit, e.X, e.Y, dmg)
		return false
	}
	w.killEnemy(e)
	return true
}

// killEnemy awards score, drops loot and runs death side effects
func (w *World) killEnemy(e *Enemy) {
	w.Run.Score += e.Score
	w.Run.Kills++
	value := GemValue
	if e.Type == EnemyBoss {
		value = BossKillGemValue
	}
	w.dropGem(e.X, e.Y, value)
	w.onEnemyDeath(e)
	w.onKillSkills(e)
	if e.Type == EnemyBoss {
		w.emit(EventBossDown, e.X, e.Y, float64(e.Score))
	} else {
		w.emitTag(EventKill, e.X, e.Y, float64(e.Score), e.Type.String())
	}
}

// despawnEnemy removes an enemy without rewards
func (w *World) despawnEnemy(e *Enemy) {
	e.Alive = false
}

// damagePlayer applies damage to the player and ends the run on death
func (w *World) damagePlayer(dmg, shake float64) {
	p := w.Player
	w.shake(shake)
	w.emit(EventPlayerHit, p.X, p.Y, dmg)
	if p.TakeDamage(dmg) {
		w.Run.Phase = PhaseGameOver
		w.emit(EventGameOver, p.X, p.Y, float64(w.Run.Score))
	}
}

// resolveEnemyBullets checks enemy bullets near the player
func (w *World) resolveEnemyBullets() {
	p := w.Player
	for _, ref := range w.Grid.Query(p.X, p.Y, KindEnemyBullet) {
		b := w.EnemyBullets[ref.Idx]
		if !b.Alive || !p.Alive {
			continue
		}
		if CheckCollision(p.X, p.Y, p.Radius, b.X, b.Y, b.Radius) {
			b.Alive = false
			w.damagePlayer(b.Damage*EnemyBulletScale, 9)
		}
	}
}

// resolveCombat handles enemy contact with the player and player bullets
// hitting enemies. Enemies spawned during resolution are not visited.
func (w *World) resolveCombat() {
	p := w.Player
	level := w.Run.Level
	n := len(w.Enemies)
	var buf []EntityRef
	for i := 0; i < n; i++ {
		e := w.Enemies[i]
		if !e.Alive {
			continue
		}

		if p.Alive && CheckCollision(p.X, p.Y, p.Radius, e.X, e.Y, e.Radius) {
			w.damagePlayer(ContactDamage(level)*GetArchetype(e.Type).ContactMul, 10)
			if e.Type == EnemyBoss {
				nx, ny, _ := unitVector(e.X, e.Y, p.X, p.Y)
				if nx == 0 && ny == 0 {
					nx = 1
				}
				p.X = Clamp(p.X+nx*BossKnockback, p.Radius, w.Cfg.Width-p.Radius)
				p.Y = Clamp(p.Y+ny*BossKnockback, p.Radius, w.Cfg.Height-p.Radius)
			} else {
				w.despawnEnemy(e)
			}
			continue
		}

		buf = w.Grid.QueryBuf(e.X, e.Y, KindPlayerBullet, buf[:0])
		for _, ref := range buf {
			b := w.Bullets[ref.Idx]
			if !b.Alive || b.hasHit(e.ID) {
				continue
			}
			if !CheckCollision(e.X, e.Y, e.Radius, b.X, b.Y, b.Radius) {
				continue
			}
			b.registerHit(e.ID)
			if w.damageEnemy(e, b.Damage, "") {
				break
			}
		}
	}
}

// sweep compacts every collection, dropping dead entities
func (w *World) sweep() {
	n := 0
	for _, e := range w.Enemies {
		if e.Alive {
			w.Enemies[n] = e
			n++
		}
	}
	clear(w.Enemies[n:])
	w.Enemies = w.Enemies[:n]

	w.Bullets = sweepBullets(w.Bullets)
	w.EnemyBullets = sweepBullets(w.EnemyBullets)

	n = 0
	for _, g := range w.Gems {
		if g.Alive {
			w.Gems[n] = g
			n++
		}
	}
	clear(w.Gems[n:])
	w.Gems = w.Gems[:n]

	n = 0
	for _, h := range w.Hearts {
		if h.Alive {
			w.Hearts[n] = h
			n++
		}
	}
	clear(w.Hearts[n:])
	w.Hearts = w.Hearts[:n]
}

func sweepBullets(bs []*Bullet) []*Bullet {
	n := 0
	for _, b := range bs {
		if b.Alive {
			bs[n] = b
			n++
		}
	}
	clear(bs[n:])
	return bs[:n]
}
