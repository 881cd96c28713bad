package main

import (
	"math"
	"testing"
)

func TestGetWeaponDefFallback(t *testing.T) {
	def := GetWeaponDef("nope")
	if def.ID != WeaponBlaster {
		t.Errorf("expected blaster fallback, got %s", def.ID)
	}
}

func TestBlasterFanIsSymmetric(t *testing.T) {
	def := GetWeaponDef(WeaponBlaster)
	angles := def.Angles(0, 3, nil)
	if len(angles) != 3 {
		t.Fatalf("expected 3 angles, got %d", len(angles))
	}
	if math.Abs(angles[0]+0.12) > 1e-9 || angles[1] != 0 || math.Abs(angles[2]-0.12) > 1e-9 {
		t.Errorf("expected -0.12, 0, 0.12, got %v", angles)
	}
}

func TestShotgunConeWidth(t *testing.T) {
	def := GetWeaponDef(WeaponShotgun)
	angles := def.Angles(1, 1, nil)
	if len(angles) != 5 {
		t.Fatalf("expected 5 pellets, got %d", len(angles))
	}
	width := angles[len(angles)-1] - angles[0]
	if math.Abs(width-def.Spread) > 1e-9 {
		t.Errorf("expected cone width %f, got %f", def.Spread, width)
	}
}

func TestMinigunJitterBounded(t *testing.T) {
	def := GetWeaponDef(WeaponMinigun)
	vals := []float64{0, 0.999, 0.5}
	i := 0
	rnd := func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
	for _, a := range def.Angles(0, 3, rnd) {
		if math.Abs(a) > def.Spread/2 {
			t.Errorf("angle %f outside jitter %f", a, def.Spread/2)
		}
	}
}

func TestFireWeaponUsesPlayerStats(t *testing.T) {
	w := newTestWorld()
	w.Player.Piercing = 2
	w.Player.Damage = 3
	w.Player.UnlockWeapon(WeaponRifle)
	w.fireWeapon(0)
	if len(w.Bullets) != 1 {
		t.Fatalf("expected 1 bullet, got %d", len(w.Bullets))
	}
	b := w.Bullets[0]
	if b.Pierce != 3 {
		t.Errorf("expected pierce 3, got %d", b.Pierce)
	}
	if math.Abs(b.Damage-6.6) > 1e-9 {
		t.Errorf("expected damage 6.6, got %f", b.Damage)
	}
}

func TestCycleWeapon(t *testing.T) {
	p := NewPlayer(0, 0)
	if p.CycleWeapon() != WeaponBlaster {
		t.Error("expected blaster with a single unlocked weapon")
	}
	p.UnlockWeapon(WeaponShotgun)
	if p.Weapon != WeaponShotgun {
		t.Errorf("expected unlock to equip shotgun, got %s", p.Weapon)
	}
	if p.CycleWeapon() != WeaponBlaster {
		t.Errorf("expected cycle back to blaster, got %s", p.Weapon)
	}
}
