package main

import "math"

const (
	SkillNebulizer  SkillID = "nebulizer"
	SkillScattergun SkillID = "scattergun"
	SkillGrenade    SkillID = "grenade"
	SkillEMP        SkillID = "emp"
	SkillLaser      SkillID = "laser"
	SkillZap        SkillID = "zap"
	SkillOrbital    SkillID = "orbital"
	SkillOmega      SkillID = "omega"
	SkillVampirism  SkillID = "vampirism"
)

const (
	LaserRange      = 900.0
	ZapColor        = "rgba(0,242,254,0.95)"
	OrbitalRadius   = 80.0
	OrbitalBodySize = 10.0
	OrbitalSpin     = 2.4 // radians/s
	OmegaFireRange  = 520.0
)

// skillOrder is the dispatch order of every skill. Filled in init because the
// effect closures reach back into the dispatcher through kill processing.
var skillOrder []*SkillDef

func init() {
	skillOrder = []*SkillDef{
		{
			ID: SkillNebulizer, Title: "Chaotic Nebulizer", Tag: "SKILL C",
			Trigger: TriggerRepeat, MinLevel: 1,
			Rate: func(l int) float64 { return 0.9 + float64(l)*0.25 },
			Fire: fireNebulizer,
		},
		{
			ID: SkillScattergun, Title: "Shrapnel Cannon", Tag: "SKILL C",
			Trigger: TriggerRepeat, MinLevel: 1,
			Rate: func(l int) float64 { return 0.7 + float64(l)*0.12 },
			Fire: fireScattergun,
		},
		{
			ID: SkillZap, Title: "Arcane Conductor", Tag: "SKILL A",
			Trigger: TriggerRepeat, MinLevel: 4,
			Rate: func(l int) float64 { return 1.2 + float64(l)*0.35 },
			Fire: fireZap,
		},
		{
			ID: SkillOrbital, Title: "Orbital Shards", Tag: "SKILL B",
			Trigger: TriggerContinuous, MinLevel: 2,
			Tick: tickOrbital,
		},
		{
			ID: SkillOmega, Title: "Omega Squadron", Tag: "SKILL S",
			Trigger: TriggerContinuous, MinLevel: 8,
			Tick: tickOmega,
		},
		{
			ID: SkillGrenade, Title: "Volatile Charge (Q)", Tag: "SKILL B",
			Trigger: TriggerCooldown, MinLevel: 3, Cooldown: 6,
			Fire: castGrenade,
		},
		{
			ID: SkillEMP, Title: "Electromagnetic Pulse (E)", Tag: "SKILL B",
			Trigger: TriggerCooldown, MinLevel: 3, Cooldown: 10,
			Fire: castEMP,
		},
		{
			ID: SkillLaser, Title: "Annihilator Beam (R)", Tag: "SKILL A",
			Trigger: TriggerCooldown, MinLevel: 5, Cooldown: 12,
			Fire: castLaser,
			Tick: tickLaser,
		},
		{
			ID: SkillVampirism, Title: "Vampirism", Tag: "SKILL B",
			Trigger: TriggerOnKill, MinLevel: 6,
			OnKill: vampirismOnKill,
		},
	}
	buildUpgradePool()
}

func fireNebulizer(w *World, s *SkillState) {
	p := w.Player
	a := w.Rand.Float64() * 2 * math.Pi
	spd := p.BulletSpeed * (0.65 + w.Rand.Float64()*0.25)
	w.addBullet(&Bullet{
		X: p.X, Y: p.Y,
		VX: math.Cos(a) * spd, VY: math.Sin(a) * spd,
		Radius: math.Max(2.8, p.BulletRadius*0.75),
		Damage: math.Max(1, math.Floor(1+float64(s.Level)*0.4)),
		Color:  "rgba(255,255,255,0.8)",
		Alive:  true,
	})
}

func fireScattergun(w *World, s *SkillState) {
	p := w.Player
	pellets := 6 + s.Level
	spd := p.BulletSpeed * 0.85
	for i := 0; i < pellets; i++ {
		a := p.Aim + (float64(i)/float64(pellets-1)-0.5)*0.55
		w.addBullet(&Bullet{
			X: p.X, Y: p.Y,
			VX: math.Cos(a) * spd, VY: math.Sin(a) * spd,
			Radius: math.Max(3.2, p.BulletRadius*0.9),
			Damage: math.Max(2, math.Floor(2+float64(s.Level)*0.8)),
			Color:  "rgba(255,255,255,0.9)",
			Alive:  true,
		})
	}
}

// ZapJumps returns the maximum chain length at a level
func ZapJumps(level int) int {
	return 2 + level/2
}

// ZapRange returns the maximum hop distance at a level
func ZapRange(level int) float64 {
	return 220 + float64(level)*15
}

// fireZap chains lightning from the nearest enemy to nearby un-hit enemies
func fireZap(w *World, s *SkillState) {
	p := w.Player
	cur := w.nearestEnemy(p.X, p.Y, math.Inf(1), nil)
	if cur == nil {
		return
	}
	dmg := 10 + float64(s.Level)*5
	hit := make(map[uint32]bool, ZapJumps(s.Level))
	for j := 0; j < ZapJumps(s.Level); j++ {
		if cur == nil || hit[cur.ID] {
			break
		}
		hit[cur.ID] = true
		x, y := cur.X, cur.Y
		w.damageEnemy(cur, dmg, ZapColor)
		w.emitTag(EventCast, x, y, float64(j), string(SkillZap))
		cur = w.nearestEnemy(x, y, ZapRange(s.Level), hit)
	}
}

// OrbitalCount returns the number of orbiting bodies at a level
func OrbitalCount(level int) int {
	return min(6, level+1)
}

// OrbitalDPS returns the contact damage per second of each body
func OrbitalDPS(level int) float64 {
	return 40 + float64(level)*12
}

// orbitalPositions returns the centers of the orbiting bodies
func orbitalPositions(p *Player, s *SkillState) [][2]float64 {
	n := OrbitalCount(s.Level)
	out := make([][2]float64, n)
	for k := 0; k < n; k++ {
		a := s.Angle + 2*math.Pi*float64(k)/float64(n)
		out[k] = [2]float64{p.X + math.Cos(a)*OrbitalRadius, p.Y + math.Sin(a)*OrbitalRadius}
	}
	return out
}

func tickOrbital(w *World, s *SkillState, dt float64) {
	s.Angle = math.Mod(s.Angle+OrbitalSpin*dt, 2*math.Pi)
	dmg := OrbitalDPS(s.Level) * dt
	for _, pos := range orbitalPositions(w.Player, s) {
		for _, e := range w.Enemies {
			if e.Alive && CheckCollision(pos[0], pos[1], OrbitalBodySize, e.X, e.Y, e.Radius) {
				w.damageEnemy(e, dmg, "")
			}
		}
	}
}

// OmegaJets returns how many jets the squadron keeps at a level
func OmegaJets(level int) int {
	return 1 + (level-1)/2
}

func tickOmega(w *World, s *SkillState, dt float64) {
	p := w.Player
	for len(s.Jets) < OmegaJets(s.Level) {
		s.Jets = append(s.Jets, Jet{
			Angle:  w.Rand.Float64() * 2 * math.Pi,
			Radius: 190 + w.Rand.Float64()*40,
		})
	}
	l := float64(s.Level)
	auraR := 42 + l*6
	auraDmg := math.Max(1, math.Floor((80+l*22)*dt))
	fireRate := 2.2 + l*0.35
	for i := range s.Jets {
		jet := &s.Jets[i]
		jet.Angle += (0.9 + l*0.08) * dt
		jet.X = p.X + math.Cos(jet.Angle)*jet.Radius
		jet.Y = p.Y + math.Sin(jet.Angle)*jet.Radius

		for _, e := range w.Enemies {
			if e.Alive && InRadius(jet.X, jet.Y, auraR, e.X, e.Y, e.Radius) {
				w.damageEnemy(e, auraDmg, "")
			}
		}

		jet.FireT -= dt
		if jet.FireT > 0 || !w.anyEnemy() {
			continue
		}
		jet.FireT = 1 / fireRate
		target := w.nearestEnemy(p.X, p.Y, OmegaFireRange, nil)
		if target == nil {
			continue
		}
		a := math.Atan2(target.Y-jet.Y, target.X-jet.X) + (w.Rand.Float64()-0.5)*0.25
		spd := p.BulletSpeed * 0.95
		w.addBullet(&Bullet{
			X: jet.X, Y: jet.Y,
			VX: math.Cos(a) * spd, VY: math.Sin(a) * spd,
			Radius: 3.2,
			Damage: math.Max(1, math.Floor(2+l*0.9)),
			Color:  "rgba(255,255,255,0.95)",
			Alive:  true,
			Target: target,
		})
	}
}

// GrenadeSpread returns the aim jitter window, narrowing with level
func GrenadeSpread(level int) float64 {
	return 0.9 - math.Min(0.6, float64(level)*0.08)
}

func castGrenade(w *World, s *SkillState) {
	p := w.Player
	a := p.Aim + (w.Rand.Float64()-0.5)*GrenadeSpread(s.Level)
	dist := 220 + w.Rand.Float64()*220
	l := float64(s.Level)
	w.explodeAt(p.X+math.Cos(a)*dist, p.Y+math.Sin(a)*dist, 170+l*12, 22+l*8, "rgba(255,65,108,0.95)")
}

// EMPResist returns the damage multiplier an enemy type takes from the EMP
func EMPResist(t EnemyType) float64 {
	switch t {
	case EnemyTank:
		return 0.55
	case EnemyBoss:
		return 0.35
	}
	return 1
}

func castEMP(w *World, s *SkillState) {
	p := w.Player
	l := float64(s.Level)
	r := 220 + l*18
	dmg := 18 + l*6
	slow := 2.2 + l*0.3
	w.flash(0.9)
	w.shake(12)
	w.addBlast(p.X, p.Y, r, "rgba(0,242,254,0.9)")
	for _, e := range w.Enemies {
		if !e.Alive || !InRadius(p.X, p.Y, r, e.X, e.Y, e.Radius) {
			continue
		}
		e.SlowT = math.Max(e.SlowT, slow)
		w.damageEnemy(e, math.Floor(dmg*EMPResist(e.Type)), "rgba(0,242,254,0.9)")
	}
}

func castLaser(w *World, s *SkillState) {
	s.Beam = 0.55 + float64(s.Level)*0.1
	w.shake(8)
}

// LaserWidth returns the beam half-width added to enemy radius
func LaserWidth(level int) float64 {
	return 10 + float64(level)*3
}

// LaserDPS returns beam damage per second
func LaserDPS(level int) float64 {
	return 120 + float64(level)*45
}

func tickLaser(w *World, s *SkillState, dt float64) {
	if s.Beam <= 0 {
		return
	}
	s.Beam = math.Max(0, s.Beam-dt)
	p := w.Player
	width := LaserWidth(s.Level)
	x2 := p.X + math.Cos(p.Aim)*LaserRange
	y2 := p.Y + math.Sin(p.Aim)*LaserRange
	dmg := LaserDPS(s.Level) * dt
	for _, e := range w.Enemies {
		if e.Alive && PointSegmentDistance(e.X, e.Y, p.X, p.Y, x2, y2) <= e.Radius+width {
			w.damageEnemy(e, dmg, "rgba(0,242,254,0.85)")
		}
	}
	w.Beam = Beam{Active: true, X1: p.X, Y1: p.Y, X2: x2, Y2: y2, Width: width}
}

// VampirismChance returns the heal probability per kill
func VampirismChance(level int) float64 {
	return 0.3 + float64(level)*0.1
}

// VampirismHeal returns the heal amount per successful roll
func VampirismHeal(level int) float64 {
	return 3 + float64(level)*2
}

func vampirismOnKill(w *World, s *SkillState, e *Enemy) {
	if w.Rand.Float64() >= VampirismChance(s.Level) {
		return
	}
	if healed := w.Player.Heal(VampirismHeal(s.Level)); healed > 0 {
		w.emitTag(EventHeal, w.Player.X, w.Player.Y, healed, string(SkillVampirism))
	}
}
