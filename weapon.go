package main

import "math"

// WeaponID identifies a weapon
type WeaponID string

const (
	WeaponBlaster WeaponID = "blaster"
	WeaponShotgun WeaponID = "shotgun"
	WeaponRifle   WeaponID = "rifle"
	WeaponMinigun WeaponID = "minigun"
)

// FirePattern selects how a trigger pull lays out its bullets
type FirePattern int

const (
	PatternFan    FirePattern = 0 // evenly spaced by Spread per bullet
	PatternCone   FirePattern = 1 // Spread is the total cone width
	PatternJitter FirePattern = 2 // each bullet randomly offset within +-Spread/2
)

// WeaponDef holds the multipliers a weapon applies on top of player stats
type WeaponDef struct {
	ID          WeaponID
	Name        string
	Pattern     FirePattern
	Spread      float64
	ExtraShots  int // bullets added to the player's projectile count
	DamageMul   float64
	FireRateMul float64
	SpeedMul    float64
	RadiusMul   float64
	ExtraPierce int
	Color       string
}

var Weapons = []WeaponDef{
	{
		ID: WeaponBlaster, Name: "Blaster", Pattern: PatternFan, Spread: 0.12,
		DamageMul: 1, FireRateMul: 1, SpeedMul: 1, RadiusMul: 1, Color: "#fff",
	},
	// Shotgun: short bursts, wide cone
	{
		ID: WeaponShotgun, Name: "Shotgun", Pattern: PatternCone, Spread: 0.6, ExtraShots: 4,
		DamageMul: 0.7, FireRateMul: 0.55, SpeedMul: 0.9, RadiusMul: 1, Color: "#ffd54f",
	},
	// Rifle: slow, heavy, piercing
	{
		ID: WeaponRifle, Name: "Rifle", Pattern: PatternFan, Spread: 0.04,
		DamageMul: 2.2, FireRateMul: 0.5, SpeedMul: 1.6, RadiusMul: 0.9, ExtraPierce: 1, Color: "#80d8ff",
	},
	// Minigun: rapid, inaccurate
	{
		ID: WeaponMinigun, Name: "Minigun", Pattern: PatternJitter, Spread: 0.36,
		DamageMul: 0.6, FireRateMul: 2.4, SpeedMul: 1.05, RadiusMul: 0.8, Color: "#ff9e80",
	},
}

// GetWeaponDef returns the definition for a weapon, Blaster when unknown
func GetWeaponDef(id WeaponID) WeaponDef {
	for _, w := range Weapons {
		if w.ID == id {
			return w
		}
	}
	return Weapons[0]
}

// FireInterval returns seconds between trigger pulls for a player with this weapon
func (d WeaponDef) FireInterval(p *Player) float64 {
	rate := p.FireRate * d.FireRateMul
	if rate <= 0 {
		return math.Inf(1)
	}
	return 1 / rate
}

// Angles returns the firing angles of one trigger pull around aim
func (d WeaponDef) Angles(aim float64, shots int, rnd func() float64) []float64 {
	n := shots + d.ExtraShots
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for i := range out {
		switch d.Pattern {
		case PatternCone:
			if n == 1 {
				out[i] = aim
			} else {
				out[i] = aim + (float64(i)/float64(n-1)-0.5)*d.Spread
			}
		case PatternJitter:
			out[i] = aim + (rnd()-0.5)*d.Spread
		default:
			out[i] = aim + (float64(i)-float64(n-1)/2)*d.Spread
		}
	}
	return out
}

// fireWeapon spawns one trigger pull of the equipped weapon
func (w *World) fireWeapon(angle float64) {
	p := w.Player
	def := GetWeaponDef(p.Weapon)
	speed := p.BulletSpeed * def.SpeedMul
	for _, a := range def.Angles(angle, p.Projectiles, w.Rand.Float64) {
		w.addBullet(&Bullet{
			X:      p.X,
			Y:      p.Y,
			VX:     math.Cos(a) * speed,
			VY:     math.Sin(a) * speed,
			Radius: p.BulletRadius * def.RadiusMul,
			Damage: p.Damage * def.DamageMul,
			Pierce: p.Piercing + def.ExtraPierce,
			Color:  def.Color,
			Alive:  true,
		})
	}
	w.shake(2.5)
	w.emitTag(EventShoot, p.X, p.Y, 0, string(def.ID))
}

// addBullet appends a player bullet unless the cap is reached
func (w *World) addBullet(b *Bullet) bool {
	if len(w.Bullets) >= w.Cfg.MaxBullets {
		return false
	}
	w.Bullets = append(w.Bullets, b)
	return true
}
