package main

import (
	"math"
	"math/rand"
	"time"
)

// CastSlots maps the three cast triggers to their skills
var CastSlots = [3]SkillID{SkillGrenade, SkillEMP, SkillLaser}

// Input is the normalized input for one step. Triggers are edge events and
// are consumed by exactly one step.
type Input struct {
	MoveX, MoveY float64 // magnitude <= 1
	Aim          float64 // world-space aim angle
	HasAim       bool
	Fire         bool
	Pulse        bool
	CycleWeapon  bool
	Cast         [3]bool
	AutoFire     bool
	AutoAim      bool
	AutoCast     bool
}

// World owns all simulation state of one run
type World struct {
	Cfg  WorldConfig
	Rand *rand.Rand
	Run  RunState

	Player       *Player
	Enemies      []*Enemy
	Bullets      []*Bullet
	EnemyBullets []*Bullet
	Gems         []*Gem
	Hearts       []*Heart
	Particles    []Particle
	Blasts       []Blast

	Pulse  PulseState
	Beam   Beam
	Shake  float64
	Flash  float64
	Events []Event
	Frame  uint64

	Grid    *SpatialGrid
	nextID  uint32
	pickBuf []EntityRef
}

// NewWorld creates a world with the player centered in the arena. A zero seed
// draws one from the wall clock.
func NewWorld(cfg WorldConfig) *World {
	def := DefaultWorldConfig()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.MaxDT <= 0 {
		cfg.MaxDT = def.MaxDT
	}
	if cfg.MaxEnemies <= 0 {
		cfg.MaxEnemies = def.MaxEnemies
	}
	if cfg.MaxBullets <= 0 {
		cfg.MaxBullets = def.MaxBullets
	}
	if cfg.MaxEnemyBullets <= 0 {
		cfg.MaxEnemyBullets = def.MaxEnemyBullets
	}
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = def.MaxParticles
	}
	if cfg.MaxGems <= 0 {
		cfg.MaxGems = def.MaxGems
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = def.MaxEvents
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &World{
		Cfg:    cfg,
		Rand:   rand.New(rand.NewSource(cfg.Seed)),
		Run:    NewRunState(),
		Player: NewPlayer(cfg.Width/2, cfg.Height/2),
		Grid:   NewSpatialGrid(cfg.Width, cfg.Height),
	}
}

// SetPaused freezes or resumes the run. Ignored unless the run is in progress.
func (w *World) SetPaused(paused bool) bool {
	if w.Run.Phase != PhaseRunning {
		return false
	}
	w.Run.Paused = paused
	return true
}

// resolveAim picks the aim angle: nearest enemy when auto-aiming, else the input
func (w *World) resolveAim(in Input) float64 {
	p := w.Player
	if p.AutoAim {
		if e := w.nearestEnemy(p.X, p.Y, math.Inf(1), nil); e != nil {
			return math.Atan2(e.Y-p.Y, e.X-p.X)
		}
	}
	if in.HasAim {
		return in.Aim
	}
	return p.Aim
}

// Step advances the simulation by dt seconds. It does nothing while paused,
// awaiting an upgrade choice, or after game over.
func (w *World) Step(dt float64, in Input) {
	if dt <= 0 || w.Run.Frozen() {
		return
	}
	dt = ClampDT(dt, w.Cfg.MaxDT)
	w.Frame++
	w.Beam = Beam{}
	p := w.Player

	// timers and cooldowns
	w.advanceTimers(dt)
	p.Update(dt)
	if w.Pulse.Timer > 0 {
		w.Pulse.Timer = math.Max(0, w.Pulse.Timer-dt)
	}

	// player movement and aim
	p.AutoFire, p.AutoAim, p.AutoCast = in.AutoFire, in.AutoAim, in.AutoCast
	p.Move(in.MoveX, in.MoveY, dt, w.Cfg.Width, w.Cfg.Height)
	p.Aim = w.resolveAim(in)
	if in.CycleWeapon {
		id := p.CycleWeapon()
		w.emitTag(EventWeapon, p.X, p.Y, 0, string(id))
	}

	// abilities
	w.tickSkills(dt)
	for i, id := range CastSlots {
		if in.Cast[i] {
			_ = w.Cast(id)
		}
	}
	if p.AutoCast {
		w.autoCast()
	}
	if in.Pulse {
		w.TryPulse()
	} else {
		w.autoPulse()
	}

	// weapon
	if (in.Fire || p.AutoFire) && p.FireCD <= 0 {
		def := GetWeaponDef(p.Weapon)
		p.FireCD = def.FireInterval(p)
		w.fireWeapon(p.Aim)
	}

	// projectiles
	for _, b := range w.Bullets {
		b.Update(dt, w.Cfg.Width, w.Cfg.Height, BulletMargin)
	}
	for _, b := range w.EnemyBullets {
		b.Update(dt, w.Cfg.Width, w.Cfg.Height, EnemyBulletMargin)
	}

	// spawner and enemy behavior
	w.trySpawn()
	for _, e := range w.Enemies {
		if !e.Alive {
			continue
		}
		w.moveEnemy(e, dt)
		w.enemyShoot(e, dt)
	}

	// collision
	w.Grid.Rebuild(w)
	w.resolveEnemyBullets()
	w.resolveCombat()

	w.updateParticles(dt)
	w.decayEffects(dt)

	// progression
	if w.Run.Phase == PhaseRunning {
		w.collectPickups(dt)
	}
	w.sweep()
}
