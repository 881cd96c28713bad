package main

import (
	"errors"
	"math"
)

// SkillID identifies an upgradeable skill
type SkillID string

// TriggerKind selects how the dispatcher drives a skill
type TriggerKind int

const (
	TriggerRepeat     TriggerKind = 0 // fires when T reaches 0, then T = 1/rate(level)
	TriggerCooldown   TriggerKind = 1 // cast on demand when Timer <= 0, then Timer = Cooldown
	TriggerContinuous TriggerKind = 2 // Tick runs every step
	TriggerOnKill     TriggerKind = 3 // OnKill runs for every enemy kill
)

// SkillDef is the data-driven description of one skill
type SkillDef struct {
	ID       SkillID
	Title    string
	Tag      string
	Trigger  TriggerKind
	MinLevel int // run level required before the skill is offered
	Cooldown float64
	Rate     func(level int) float64
	Fire     func(w *World, s *SkillState)
	Tick     func(w *World, s *SkillState, dt float64)
	OnKill   func(w *World, s *SkillState, e *Enemy)
}

// Jet is one orbiting fighter of the omega squadron
type Jet struct {
	Angle  float64
	Radius float64
	FireT  float64
	X, Y   float64
}

// SkillState is the per-run state of a skill. Level 0 means not owned.
type SkillState struct {
	Level int
	T     float64 // repeat countdown
	Timer float64 // cooldown remaining
	Beam  float64 // laser beam time remaining
	Angle float64 // orbital rotation
	Jets  []Jet
}

// ToView converts to snapshot state
func (s *SkillState) ToView() SkillView {
	return SkillView{Level: s.Level, CD: round1(s.Timer), Beam: s.Beam > 0}
}

var (
	ErrUnknownSkill  = errors.New("unknown skill")
	ErrSkillNotOwned = errors.New("skill not owned")
	ErrSkillCooldown = errors.New("skill on cooldown")
	ErrNotCastable   = errors.New("skill is not castable")
)

// GetSkillDef looks up a skill definition
func GetSkillDef(id SkillID) (*SkillDef, bool) {
	for _, def := range skillOrder {
		if def.ID == id {
			return def, true
		}
	}
	return nil, false
}

// tickSkills advances every owned skill by dt
func (w *World) tickSkills(dt float64) {
	for _, def := range skillOrder {
		s := w.Player.Skill(def.ID)
		if s.Level <= 0 {
			continue
		}
		switch def.Trigger {
		case TriggerRepeat:
			s.T -= dt
			if s.T <= 0 {
				s.T = 1 / def.Rate(s.Level)
				def.Fire(w, s)
			}
		case TriggerCooldown:
			if s.Timer > 0 {
				s.Timer = math.Max(0, s.Timer-dt)
			}
		}
		if def.Tick != nil {
			def.Tick(w, s, dt)
		}
	}
}

// Cast triggers a cooldown-gated skill. It fails when the skill is unowned or
// still cooling down.
func (w *World) Cast(id SkillID) error {
	def, ok := GetSkillDef(id)
	if !ok {
		return ErrUnknownSkill
	}
	if def.Trigger != TriggerCooldown {
		return ErrNotCastable
	}
	s := w.Player.Skill(id)
	if s.Level <= 0 {
		return ErrSkillNotOwned
	}
	if s.Timer > 0 {
		return ErrSkillCooldown
	}
	s.Timer = def.Cooldown
	def.Fire(w, s)
	w.emitTag(EventCast, w.Player.X, w.Player.Y, float64(s.Level), string(id))
	return nil
}

// autoCast casts every ready active skill while any enemy exists
func (w *World) autoCast() {
	if !w.anyEnemy() {
		return
	}
	for _, def := range skillOrder {
		if def.Trigger != TriggerCooldown {
			continue
		}
		s := w.Player.Skill(def.ID)
		if s.Level > 0 && s.Timer <= 0 {
			_ = w.Cast(def.ID)
		}
	}
}

// onKillSkills runs the kill hooks of every owned skill
func (w *World) onKillSkills(e *Enemy) {
	for _, def := range skillOrder {
		if def.Trigger != TriggerOnKill {
			continue
		}
		s := w.Player.Skill(def.ID)
		if s.Level > 0 {
			def.OnKill(w, s, e)
		}
	}
}

const (
	PulseCooldown  = 8.0
	PulseRadius    = 200.0
	PulseDamage    = 10.0
	PulseKnockback = 330.0
)

// PulseState is the innate area burst every player owns
type PulseState struct {
	Timer float64
}

// PulseDamageAt returns the pulse damage at distance dist from an enemy of radius er
func PulseDamageAt(level int, dist, er float64) float64 {
	t := falloff(dist, PulseRadius, er)
	return math.Max(1, math.Floor((PulseDamage+float64(level)*0.6)*(0.55+0.45*t)))
}

// TryPulse fires the pulse if it is off cooldown. Returns true when it fired.
func (w *World) TryPulse() bool {
	if w.Pulse.Timer > 0 {
		return false
	}
	w.Pulse.Timer = PulseCooldown
	p := w.Player
	w.flash(1)
	w.shake(14)
	w.addBlast(p.X, p.Y, PulseRadius, "rgba(0,242,254,0.6)")
	w.emit(EventPulse, p.X, p.Y, PulseRadius)
	for _, e := range w.Enemies {
		if !e.Alive {
			continue
		}
		nx, ny, dist := unitVector(p.X, p.Y, e.X, e.Y)
		if dist > PulseRadius+e.Radius {
			continue
		}
		t := falloff(dist, PulseRadius, e.Radius)
		w.damageEnemy(e, PulseDamageAt(w.Run.Level, dist, e.Radius), "")
		e.X += nx * PulseKnockback * t
		e.Y += ny * PulseKnockback * t
	}
	return true
}

// autoPulse fires the pulse when ready and an enemy is inside its radius
func (w *World) autoPulse() {
	if w.Pulse.Timer > 0 {
		return
	}
	p := w.Player
	for _, e := range w.Enemies {
		if e.Alive && InRadius(p.X, p.Y, PulseRadius, e.X, e.Y, e.Radius) {
			w.TryPulse()
			return
		}
	}
}

// explodeAt deals falloff damage and knockback around (x, y)
func (w *World) explodeAt(x, y, radius, damage float64, color string) {
	w.flash(0.75)
	w.shake(10)
	w.burst(x, y, color)
	w.addBlast(x, y, radius, color)
	w.emit(EventExplosion, x, y, radius)
	for _, e := range w.Enemies {
		if !e.Alive {
			continue
		}
		nx, ny, d := unitVector(x, y, e.X, e.Y)
		if d > radius+e.Radius {
			continue
		}
		t := falloff(d, radius, e.Radius)
		w.damageEnemy(e, math.Max(1, math.Floor(damage*(0.45+0.55*t))), "")
		e.X += nx * 18 * t
		e.Y += ny * 18 * t
	}
}

// nearestEnemy returns the closest live enemy to (x, y) within rng, skipping ids in ignore
func (w *World) nearestEnemy(x, y, rng float64, ignore map[uint32]bool) *Enemy {
	var best *Enemy
	bestD := math.Inf(1)
	r2 := rng * rng
	for _, e := range w.Enemies {
		if !e.Alive || ignore[e.ID] {
			continue
		}
		d2 := DistanceSq(x, y, e.X, e.Y)
		if d2 < bestD && d2 <= r2 {
			bestD = d2
			best = e
		}
	}
	return best
}

func (w *World) anyEnemy() bool {
	for _, e := range w.Enemies {
		if e.Alive {
			return true
		}
	}
	return false
}
