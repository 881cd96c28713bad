package main

import "math"

const (
	PlayerRadius       = 15.0
	PlayerSpeed        = 252.0 // units/s
	PlayerMaxHP        = 100.0
	PlayerDamage       = 1.0
	PlayerBulletSpeed  = 480.0 // units/s
	PlayerBulletRadius = 4.0
	PlayerFireRate     = 4.5 // shots/s
	PlayerMagnet       = 100.0
	LevelUpMaxHP       = 8.0
	LevelUpHeal        = 12.0
	BossKnockback      = 90.0
)

// Player is the single player entity of a run
type Player struct {
	X, Y         float64
	Radius       float64
	Speed        float64
	HP           float64
	MaxHP        float64
	Damage       float64
	BulletSpeed  float64
	BulletRadius float64
	FireRate     float64
	Projectiles  int // bullets per trigger pull
	Piercing     int
	Magnet       float64
	Regen        float64 // HP/s
	Alive        bool
	FireCD       float64
	Aim          float64 // last resolved aim angle

	AutoAim  bool
	AutoFire bool
	AutoCast bool

	Weapon   WeaponID
	Unlocked []WeaponID
	Skills   map[SkillID]*SkillState
}

// NewPlayer creates a player with base stats at (x, y)
func NewPlayer(x, y float64) *Player {
	p := &Player{
		X:            x,
		Y:            y,
		Radius:       PlayerRadius,
		Speed:        PlayerSpeed,
		HP:           PlayerMaxHP,
		MaxHP:        PlayerMaxHP,
		Damage:       PlayerDamage,
		BulletSpeed:  PlayerBulletSpeed,
		BulletRadius: PlayerBulletRadius,
		FireRate:     PlayerFireRate,
		Projectiles:  1,
		Magnet:       PlayerMagnet,
		Alive:        true,
		Weapon:       WeaponBlaster,
		Unlocked:     []WeaponID{WeaponBlaster},
		Skills:       make(map[SkillID]*SkillState, len(skillOrder)),
	}
	for _, def := range skillOrder {
		p.Skills[def.ID] = &SkillState{}
	}
	return p
}

// Move integrates a movement vector (magnitude clamped to 1) and keeps the
// player inside the arena.
func (p *Player) Move(mx, my, dt, worldW, worldH float64) {
	if l := math.Hypot(mx, my); l > 1 {
		mx /= l
		my /= l
	}
	p.X += mx * p.Speed * dt
	p.Y += my * p.Speed * dt
	p.X = Clamp(p.X, p.Radius, worldW-p.Radius)
	p.Y = Clamp(p.Y, p.Radius, worldH-p.Radius)
}

// Update ticks regeneration and the fire cooldown
func (p *Player) Update(dt float64) {
	if !p.Alive {
		return
	}
	if p.Regen > 0 {
		p.Heal(p.Regen * dt)
	}
	p.FireCD -= dt
}

// TakeDamage reduces HP and returns true if the player died
func (p *Player) TakeDamage(dmg float64) bool {
	if !p.Alive || dmg <= 0 {
		return false
	}
	p.HP -= dmg
	if p.HP <= 0 {
		p.HP = 0
		p.Alive = false
		return true
	}
	return false
}

// Heal restores HP up to MaxHP and returns the amount actually restored
func (p *Player) Heal(amount float64) float64 {
	if !p.Alive || amount <= 0 {
		return 0
	}
	before := p.HP
	p.HP = math.Min(p.MaxHP, p.HP+amount)
	return p.HP - before
}

// Skill returns the state of a skill (never nil for known skills)
func (p *Player) Skill(id SkillID) *SkillState {
	s, ok := p.Skills[id]
	if !ok {
		s = &SkillState{}
		p.Skills[id] = s
	}
	return s
}

// HasWeapon reports whether a weapon is unlocked
func (p *Player) HasWeapon(id WeaponID) bool {
	for _, w := range p.Unlocked {
		if w == id {
			return true
		}
	}
	return false
}

// UnlockWeapon adds a weapon and equips it
func (p *Player) UnlockWeapon(id WeaponID) {
	if !p.HasWeapon(id) {
		p.Unlocked = append(p.Unlocked, id)
	}
	p.Weapon = id
}

// CycleWeapon equips the next unlocked weapon
func (p *Player) CycleWeapon() WeaponID {
	if len(p.Unlocked) == 0 {
		return p.Weapon
	}
	idx := 0
	for i, w := range p.Unlocked {
		if w == p.Weapon {
			idx = i
			break
		}
	}
	p.Weapon = p.Unlocked[(idx+1)%len(p.Unlocked)]
	return p.Weapon
}

// ToState converts to snapshot state
func (p *Player) ToState() PlayerState {
	skills := make(map[string]SkillView, len(p.Skills))
	for id, s := range p.Skills {
		if s.Level > 0 {
			skills[string(id)] = s.ToView()
		}
	}
	return PlayerState{
		X:           round1(p.X),
		Y:           round1(p.Y),
		R:           p.Radius,
		HP:          round1(p.HP),
		MaxHP:       p.MaxHP,
		Aim:         p.Aim,
		Alive:       p.Alive,
		Weapon:      string(p.Weapon),
		Damage:      p.Damage,
		FireRate:    p.FireRate,
		Projectiles: p.Projectiles,
		Piercing:    p.Piercing,
		Skills:      skills,
	}
}
